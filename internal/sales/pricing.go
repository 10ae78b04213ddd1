package sales

import "math"

// round2 keeps money at two decimal places, matching how amounts are stored.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PriceLine fills in the derived fields of a product line from its quantity,
// unit price and percentage discount. It is idempotent: repricing an already
// priced line yields the same numbers.
func PriceLine(line *SaleItem) {
	line.DiscountedPrice = round2(line.UnitPrice * (1 - line.Discount/100))
	line.TotalPrice = round2(line.DiscountedPrice * float64(line.Quantity))
}

// ComputeTotals recomputes the sale's money fields from its lines and the
// order-level adjustments. The ledger fields AmountPaid and BalanceDue are
// reconciled against the new total: the balance never goes below zero.
func ComputeTotals(s *Sale) {
	var sub float64
	for i := range s.Items {
		PriceLine(&s.Items[i])
		sub += s.Items[i].TotalPrice
	}
	s.SubTotal = round2(sub)
	s.TaxAmount = round2(s.SubTotal * s.TaxRate / 100)
	s.TotalPrice = round2(s.SubTotal + s.TaxAmount + s.ShippingCost - s.Discount)
	s.BalanceDue = round2(s.TotalPrice - s.AmountPaid)
	if s.BalanceDue < 0 {
		s.BalanceDue = 0
	}
}

// ReconcilePaymentStatus derives the payment axis from the ledger total.
// A refunded sale keeps its status; the axis otherwise follows the money.
func ReconcilePaymentStatus(s *Sale) string {
	if s.PaymentStatus == PaymentRefunded {
		return PaymentRefunded
	}
	switch {
	case s.AmountPaid <= 0:
		return PaymentPending
	case s.AmountPaid+0.005 >= s.TotalPrice:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// ReconcileStatus derives the overall sale status from the three axes.
// Cancelled, delivered and the quotation stage are terminal for this
// purpose; a confirmed sale advances to paid once settled and to delivered
// once the goods are out. A delivered sale never reverts, even when its
// delivery axis later records a return.
func ReconcileStatus(s *Sale) string {
	if s.Status == StatusCancelled || s.Status == StatusQuotation || s.Status == StatusDelivered {
		return s.Status
	}
	if s.DeliveryStatus == DeliveryDelivered {
		return StatusDelivered
	}
	if s.PaymentStatus == PaymentPaid {
		return StatusPaid
	}
	return StatusConfirmed
}
