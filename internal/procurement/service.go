package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	CreateOrder(ctx context.Context, o Order) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string, deliveredAt *time.Time) error
	UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error
}

// CatalogPort looks up catalog items when pricing an order.
type CatalogPort interface {
	GetItem(ctx context.Context, id int64) (*hardware.Item, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates purchase order operations.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	audit   AuditPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort, catalog CatalogPort, audit AuditPort) *Service {
	return &Service{repo: repo, catalog: catalog, audit: audit}
}

// CreateOrder places a purchase order. Unit prices are snapshotted from the
// catalog at placement, and the total is the sum of the line totals.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest, createdBy int64) (*Order, error) {
	var expected *time.Time
	if req.ExpectedDate != nil {
		day, err := time.Parse("2006-01-02", *req.ExpectedDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid expected date", shared.ErrValidation)
		}
		expected = &day
	}

	var items []OrderItem
	var total float64
	for _, line := range req.Items {
		item, err := s.catalog.GetItem(ctx, line.HardwareID)
		if err != nil {
			return nil, fmt.Errorf("resolve hardware %d: %w", line.HardwareID, err)
		}
		lineTotal := item.PricePerUnit * float64(line.Quantity)
		items = append(items, OrderItem{
			HardwareID: item.ID,
			Name:       item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  item.PricePerUnit,
			LineTotal:  lineTotal,
		})
		total += lineTotal
	}

	order := Order{
		Supplier:     req.Supplier,
		TotalAmount:  total,
		ExpectedDate: expected,
		Notes:        req.Notes,
		CreatedBy:    createdBy,
		Items:        items,
	}
	id, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  createdBy,
			Action:   "procurement:create",
			Entity:   "purchase_order",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"supplier": req.Supplier, "total": total, "lines": len(items)},
		})
	}
	return s.repo.GetOrder(ctx, id)
}

// GetOrder retrieves one purchase order with its lines.
func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders returns filtered purchase orders.
func (s *Service) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.repo.ListOrders(ctx, req)
}

// UpdateStatus moves an order through its lifecycle. Delivery increments the
// catalog stock for every line atomically with the status change.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest, actorID int64) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if !CanTransition(order.Status, req.Status) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s",
			shared.ErrInvalidState, order.Status, req.Status)
	}

	var deliveredAt *time.Time
	if req.Status == StatusDelivered {
		now := time.Now().UTC()
		deliveredAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status, deliveredAt); err != nil {
		return nil, fmt.Errorf("update purchase order status: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "procurement:status",
			Entity:   "purchase_order",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"from": order.Status, "to": req.Status},
		})
	}
	return s.repo.GetOrder(ctx, id)
}

// UpdatePaymentStatus records supplier payment progress.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, req UpdatePaymentStatusRequest, actorID int64) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if order.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: cancelled order cannot take payments", shared.ErrInvalidState)
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, req.PaymentStatus); err != nil {
		return nil, fmt.Errorf("update purchase order payment: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "procurement:payment",
			Entity:   "purchase_order",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"payment_status": req.PaymentStatus},
		})
	}
	return s.repo.GetOrder(ctx, id)
}
