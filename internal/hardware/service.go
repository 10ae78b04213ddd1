package hardware

import (
	"context"
	"fmt"
	"time"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context, req ListItemsRequest) ([]Item, int, error)
	CreateItem(ctx context.Context, it Item) (int64, error)
	UpdateItem(ctx context.Context, id int64, updates map[string]any) error
	DeleteItem(ctx context.Context, id int64) error
	ListUnderThreshold(ctx context.Context) ([]Item, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateItem registers a new catalog item.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest, registeredBy int64) (*Item, error) {
	threshold := DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	item := Item{
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PricePerUnit: req.PricePerUnit,
		Supplier:     req.Supplier,
		Description:  req.Description,
		Threshold:    threshold,
		RegisteredBy: registeredBy,
	}
	id, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create hardware item: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  registeredBy,
			Action:   "hardware:create",
			Entity:   "hardware",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"name": req.Name, "quantity": req.Quantity},
		})
	}
	return s.repo.GetItem(ctx, id)
}

// GetItem retrieves one catalog item with stock flags.
func (s *Service) GetItem(ctx context.Context, id int64) (*ItemView, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewItemView(*item)
	return &view, nil
}

// ListItems returns the filtered catalog with stock flags computed per item.
func (s *Service) ListItems(ctx context.Context, req ListItemsRequest) ([]ItemView, int, error) {
	items, total, err := s.repo.ListItems(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	views := make([]ItemView, len(items))
	for i, it := range items {
		views[i] = NewItemView(it)
	}
	return views, total, nil
}

// UpdateItem updates catalog fields. A quantity update is a restock.
func (s *Service) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest, actorID int64) (*Item, error) {
	if _, err := s.repo.GetItem(ctx, id); err != nil {
		return nil, fmt.Errorf("get hardware item: %w", err)
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
		updates["last_restocked"] = time.Now().UTC()
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.PricePerUnit != nil {
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.Supplier != nil {
		updates["supplier"] = *req.Supplier
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Threshold != nil {
		updates["threshold"] = *req.Threshold
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateItem(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update hardware item: %w", err)
		}
		if s.audit != nil {
			_ = s.audit.Record(ctx, shared.AuditLog{
				ActorID:  actorID,
				Action:   "hardware:update",
				Entity:   "hardware",
				EntityID: fmt.Sprintf("%d", id),
				Meta:     map[string]any{"fields": len(updates)},
			})
		}
	}
	return s.repo.GetItem(ctx, id)
}

// DeleteItem removes a catalog item.
func (s *Service) DeleteItem(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "hardware:delete",
			Entity:   "hardware",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}

// ListUnderThreshold returns items below their reorder threshold.
func (s *Service) ListUnderThreshold(ctx context.Context) ([]Item, error) {
	return s.repo.ListUnderThreshold(ctx)
}
