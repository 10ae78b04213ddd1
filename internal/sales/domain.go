// Package sales implements the sale lifecycle: quotation, conversion to
// invoice with stock deduction, payment collection, and delivery tracking.
package sales

import "time"

// Sale statuses. A sale starts life as a quotation and is confirmed by
// converting it to an invoice.
const (
	StatusQuotation = "quotation"
	StatusConfirmed = "confirmed"
	StatusPaid      = "paid"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Payment statuses, derived from the ledger total against the sale total.
const (
	PaymentPending  = "pending"
	PaymentPartial  = "partial"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Delivery statuses, tracked independently of payment.
const (
	DeliveryPending    = "pending"
	DeliveryProcessing = "processing"
	DeliveryShipped    = "shipped"
	DeliveryDelivered  = "delivered"
	DeliveryReturned   = "returned"
)

// Payment methods accepted at the sales desk.
const (
	MethodCash         = "cash"
	MethodCreditCard   = "credit_card"
	MethodDebitCard    = "debit_card"
	MethodBankTransfer = "bank_transfer"
	MethodCheque       = "cheque"
	MethodOther        = "other"
)

// QuotationValidityDays is how long a quotation stays open before it expires.
const QuotationValidityDays = 30

// Sale is the lifecycle aggregate. Status, PaymentStatus and DeliveryStatus
// are three separate axes; ReconcileStatus derives the overall one.
type Sale struct {
	ID              int64      `json:"id"`
	SaleNumber      string     `json:"sale_number"`
	QuotationNumber string     `json:"quotation_number,omitempty"`
	InvoiceNumber   string     `json:"invoice_number,omitempty"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone,omitempty"`
	CustomerEmail   string     `json:"customer_email,omitempty"`
	Status          string     `json:"status"`
	PaymentStatus   string     `json:"payment_status"`
	DeliveryStatus  string     `json:"delivery_status"`
	SubTotal        float64    `json:"sub_total"`
	TaxRate         float64    `json:"tax_rate"`
	TaxAmount       float64    `json:"tax_amount"`
	ShippingCost    float64    `json:"shipping_cost"`
	Discount        float64    `json:"discount"`
	TotalPrice      float64    `json:"total_price"`
	AmountPaid      float64    `json:"amount_paid"`
	BalanceDue      float64    `json:"balance_due"`
	Notes           string     `json:"notes,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	DatePaid        *time.Time `json:"date_paid,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	CreatedBy       int64      `json:"created_by"`
	Items           []SaleItem `json:"items,omitempty"`
	Payments        []Payment  `json:"payments,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SaleItem is one product line. Pricing is snapshotted from the catalog at
// quotation time; a custom price overrides the catalog price when set.
type SaleItem struct {
	ID              int64   `json:"id"`
	SaleID          int64   `json:"sale_id"`
	HardwareID      int64   `json:"hardware_id"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	Discount        float64 `json:"discount"`
	DiscountedPrice float64 `json:"discounted_price"`
	TotalPrice      float64 `json:"total_price"`
}

// Payment is one append-only ledger entry. The receipt number is assigned
// when the payment is recorded, never later.
type Payment struct {
	ID            int64     `json:"id"`
	SaleID        int64     `json:"sale_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id,omitempty"`
	BankName      string    `json:"bank_name,omitempty"`
	ChequeNumber  string    `json:"cheque_number,omitempty"`
	CardLastFour  string    `json:"card_last_four,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ReceiptNumber string    `json:"receipt_number"`
	ReceivedBy    int64     `json:"received_by"`
	PaidAt        time.Time `json:"paid_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Expired reports whether an open quotation has passed its validity window.
func (s *Sale) Expired(now time.Time) bool {
	return s.Status == StatusQuotation && s.ValidUntil != nil && now.After(*s.ValidUntil)
}

// AcceptsPayments reports whether the sale may take ledger entries.
func (s *Sale) AcceptsPayments() bool {
	return s.Status != StatusQuotation && s.Status != StatusCancelled
}

// CreateQuotationRequest carries fields for opening a quotation.
type CreateQuotationRequest struct {
	CustomerName  string            `json:"customer_name" validate:"required,max=100"`
	CustomerPhone string            `json:"customer_phone,omitempty" validate:"omitempty,max=30"`
	CustomerEmail string            `json:"customer_email,omitempty" validate:"omitempty,email"`
	TaxRate       float64           `json:"tax_rate" validate:"gte=0,lte=100"`
	ShippingCost  float64           `json:"shipping_cost" validate:"gte=0"`
	Discount      float64           `json:"discount" validate:"gte=0"`
	Notes         string            `json:"notes,omitempty" validate:"max=500"`
	Items         []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleLineRequest is one requested product line. CustomPrice, when present,
// replaces the catalog unit price.
type SaleLineRequest struct {
	HardwareID  int64    `json:"hardware_id" validate:"required,gt=0"`
	Quantity    int      `json:"quantity" validate:"required,gt=0"`
	Discount    float64  `json:"discount" validate:"gte=0,lte=100"`
	CustomPrice *float64 `json:"custom_price,omitempty" validate:"omitempty,gte=0"`
}

// RecordPaymentRequest carries one ledger entry.
type RecordPaymentRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method" validate:"required,oneof=cash credit_card debit_card bank_transfer cheque other"`
	TransactionID string  `json:"transaction_id,omitempty" validate:"max=100"`
	BankName      string  `json:"bank_name,omitempty" validate:"max=100"`
	ChequeNumber  string  `json:"cheque_number,omitempty" validate:"max=50"`
	CardLastFour  string  `json:"card_last_four,omitempty" validate:"omitempty,len=4,numeric"`
	Notes         string  `json:"notes,omitempty" validate:"max=500"`
}

// UpdateDeliveryRequest moves the delivery axis.
type UpdateDeliveryRequest struct {
	DeliveryStatus string `json:"delivery_status" validate:"required,oneof=pending processing shipped delivered returned"`
}

// ListSalesRequest filters the sales history.
type ListSalesRequest struct {
	Status     *string
	DateFrom   *time.Time
	DateTo     *time.Time
	HardwareID *int64
	Customer   *string
	CreatedBy  *int64
	Page       int
	PerPage    int
}

// Receipt is the printable projection of one ledger entry against its sale.
type Receipt struct {
	ReceiptNumber  string        `json:"receipt_number"`
	InvoiceNumber  string        `json:"invoice_number,omitempty"`
	SaleNumber     string        `json:"sale_number"`
	CustomerName   string        `json:"customer_name"`
	Items          []ReceiptLine `json:"items"`
	SubTotal       string        `json:"sub_total"`
	TaxAmount      string        `json:"tax_amount"`
	ShippingCost   string        `json:"shipping_cost"`
	Discount       string        `json:"discount"`
	TotalPrice     string        `json:"total_price"`
	PaymentAmount  string        `json:"payment_amount"`
	PaymentMethod  string        `json:"payment_method"`
	AmountPaid     string        `json:"amount_paid"`
	BalanceDue     string        `json:"balance_due"`
	PaidAt         time.Time     `json:"paid_at"`
	ReceivedBy     int64         `json:"received_by"`
	SoldBy         int64         `json:"sold_by"`
	Notes          string        `json:"notes,omitempty"`
	FullySettled   bool          `json:"fully_settled"`
	PaymentDetails string        `json:"payment_details,omitempty"`
}

// ReceiptLine is one product line on a receipt. UnitPrice is the price
// before the line discount; DiscountedPrice is what the unit actually cost.
type ReceiptLine struct {
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       string  `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountedPrice string  `json:"discounted_price"`
	Total           string  `json:"total"`
}
