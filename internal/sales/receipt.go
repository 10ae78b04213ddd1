package sales

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands separators and two decimals,
// e.g. 12500.5 -> "12,500.50".
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprintf("%.2f", amount)
}

// BuildReceipt projects a sale and one of its ledger entries into a
// printable receipt. All money fields are pre-formatted strings.
func BuildReceipt(sale *Sale, payment Payment) Receipt {
	lines := make([]ReceiptLine, len(sale.Items))
	for i, it := range sale.Items {
		lines[i] = ReceiptLine{
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPrice:       FormatMoney(it.UnitPrice),
			DiscountPercent: it.Discount,
			DiscountedPrice: FormatMoney(it.DiscountedPrice),
			Total:           FormatMoney(it.TotalPrice),
		}
	}
	return Receipt{
		ReceiptNumber:  payment.ReceiptNumber,
		InvoiceNumber:  sale.InvoiceNumber,
		SaleNumber:     sale.SaleNumber,
		CustomerName:   sale.CustomerName,
		Items:          lines,
		SubTotal:       FormatMoney(sale.SubTotal),
		TaxAmount:      FormatMoney(sale.TaxAmount),
		ShippingCost:   FormatMoney(sale.ShippingCost),
		Discount:       FormatMoney(sale.Discount),
		TotalPrice:     FormatMoney(sale.TotalPrice),
		PaymentAmount:  FormatMoney(payment.Amount),
		PaymentMethod:  payment.Method,
		AmountPaid:     FormatMoney(sale.AmountPaid),
		BalanceDue:     FormatMoney(sale.BalanceDue),
		PaidAt:         payment.PaidAt,
		ReceivedBy:     payment.ReceivedBy,
		SoldBy:         sale.CreatedBy,
		Notes:          payment.Notes,
		FullySettled:   sale.PaymentStatus == PaymentPaid,
		PaymentDetails: paymentDetails(payment),
	}
}

// paymentDetails renders the method-specific reference for the receipt
// footer, e.g. "cheque 004512 (Stanbic Bank)".
func paymentDetails(p Payment) string {
	var parts []string
	switch p.Method {
	case MethodCheque:
		if p.ChequeNumber != "" {
			parts = append(parts, fmt.Sprintf("cheque %s", p.ChequeNumber))
		}
		if p.BankName != "" {
			parts = append(parts, fmt.Sprintf("(%s)", p.BankName))
		}
	case MethodBankTransfer:
		if p.TransactionID != "" {
			parts = append(parts, fmt.Sprintf("ref %s", p.TransactionID))
		}
		if p.BankName != "" {
			parts = append(parts, fmt.Sprintf("(%s)", p.BankName))
		}
	case MethodCreditCard, MethodDebitCard:
		if p.CardLastFour != "" {
			parts = append(parts, fmt.Sprintf("card ending %s", p.CardLastFour))
		}
	default:
		if p.TransactionID != "" {
			parts = append(parts, fmt.Sprintf("ref %s", p.TransactionID))
		}
	}
	return strings.Join(parts, " ")
}
