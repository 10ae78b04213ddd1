package workers

import (
	"context"
	"fmt"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetWorker(ctx context.Context, id int64) (*Worker, error)
	ListWorkers(ctx context.Context, req ListWorkersRequest) ([]Worker, int, error)
	CreateWorker(ctx context.Context, wk Worker) (int64, error)
	UpdateWorker(ctx context.Context, id int64, updates map[string]any) error
	DeleteWorker(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates worker registry operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// RegisterWorker creates a worker. The contact number must be unique.
func (s *Service) RegisterWorker(ctx context.Context, req CreateWorkerRequest, registeredBy int64) (*Worker, error) {
	wk := Worker{
		Name:         req.Name,
		Contact:      req.Contact,
		Role:         req.Role,
		DailyWage:    req.DailyWage,
		RegisteredBy: registeredBy,
	}
	id, err := s.repo.CreateWorker(ctx, wk)
	if err != nil {
		return nil, fmt.Errorf("register worker: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  registeredBy,
			Action:   "workers:register",
			Entity:   "worker",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"name": req.Name, "role": req.Role},
		})
	}
	return s.repo.GetWorker(ctx, id)
}

// Exists reports whether a worker exists, for cross-package references.
func (s *Service) Exists(ctx context.Context, workerID int64) error {
	_, err := s.repo.GetWorker(ctx, workerID)
	return err
}

// GetWorker retrieves one worker.
func (s *Service) GetWorker(ctx context.Context, id int64) (*Worker, error) {
	return s.repo.GetWorker(ctx, id)
}

// ListWorkers returns the filtered registry.
func (s *Service) ListWorkers(ctx context.Context, req ListWorkersRequest) ([]Worker, int, error) {
	return s.repo.ListWorkers(ctx, req)
}

// UpdateWorker updates worker fields.
func (s *Service) UpdateWorker(ctx context.Context, id int64, req UpdateWorkerRequest, actorID int64) (*Worker, error) {
	if _, err := s.repo.GetWorker(ctx, id); err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Contact != nil {
		updates["contact"] = *req.Contact
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.DailyWage != nil {
		updates["daily_wage"] = *req.DailyWage
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateWorker(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update worker: %w", err)
		}
		if s.audit != nil {
			_ = s.audit.Record(ctx, shared.AuditLog{
				ActorID:  actorID,
				Action:   "workers:update",
				Entity:   "worker",
				EntityID: fmt.Sprintf("%d", id),
				Meta:     map[string]any{"fields": len(updates)},
			})
		}
	}
	return s.repo.GetWorker(ctx, id)
}

// DeleteWorker removes a worker from the registry.
func (s *Service) DeleteWorker(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.DeleteWorker(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "workers:delete",
			Entity:   "worker",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}
