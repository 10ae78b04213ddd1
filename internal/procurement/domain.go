// Package procurement manages purchase orders for restocking the catalog.
package procurement

import "time"

// Order statuses. Orders move pending -> approved -> shipped -> delivered;
// cancellation is allowed any time before delivery.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Payment statuses for a purchase order.
const (
	PaymentUnpaid        = "unpaid"
	PaymentPartiallyPaid = "partially_paid"
	PaymentPaid          = "paid"
)

// statusTransitions is the allowed order state machine.
var statusTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusShipped, StatusCancelled},
	StatusShipped:  {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Order is a purchase order against a supplier.
type Order struct {
	ID            int64       `json:"id"`
	OrderNumber   string      `json:"order_number"`
	Supplier      string      `json:"supplier"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	TotalAmount   float64     `json:"total_amount"`
	ExpectedDate  *time.Time  `json:"expected_date,omitempty"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	CreatedBy     int64       `json:"created_by"`
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is one catalog line on a purchase order. The unit price is
// snapshotted from the catalog when the order is placed.
type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"order_id"`
	HardwareID int64   `json:"hardware_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	LineTotal  float64 `json:"line_total"`
}

// CreateOrderRequest carries fields for placing a purchase order.
type CreateOrderRequest struct {
	Supplier     string             `json:"supplier" validate:"required,max=100"`
	ExpectedDate *string            `json:"expected_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes        string             `json:"notes,omitempty" validate:"max=500"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest is one requested line on a purchase order.
type OrderItemRequest struct {
	HardwareID int64 `json:"hardware_id" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved shipped delivered cancelled"`
}

// UpdatePaymentStatusRequest records supplier payment progress.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=unpaid partially_paid paid"`
}

// ListOrdersRequest filters purchase order listings.
type ListOrdersRequest struct {
	Status        *string
	PaymentStatus *string
	Supplier      *string
	Page          int
	PerPage       int
}
