package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetRecord(ctx context.Context, id int64) (*Record, error)
	ListRecords(ctx context.Context, req ListRequest) ([]Record, int, error)
	CreateRecord(ctx context.Context, rec Record) (int64, error)
	UpdateRecord(ctx context.Context, id int64, updates map[string]any) error
	DeleteRecord(ctx context.Context, id int64) error
}

// WorkerPort looks up workers in the registry.
type WorkerPort interface {
	Exists(ctx context.Context, workerID int64) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates attendance operations.
type Service struct {
	repo    RepositoryPort
	workers WorkerPort
	audit   AuditPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort, workers WorkerPort, audit AuditPort) *Service {
	return &Service{repo: repo, workers: workers, audit: audit}
}

// Mark records attendance for a worker on a given day. The worker must exist
// and may only be marked once per day.
func (s *Service) Mark(ctx context.Context, req MarkRequest, markedBy int64) (*Record, error) {
	if err := s.workers.Exists(ctx, req.WorkerID); err != nil {
		return nil, fmt.Errorf("resolve worker: %w", err)
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", shared.ErrValidation)
	}

	rec := Record{
		WorkerID: req.WorkerID,
		Date:     day,
		Present:  req.Present,
		Site:     req.Site,
		MarkedBy: markedBy,
	}
	id, err := s.repo.CreateRecord(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  markedBy,
			Action:   "attendance:mark",
			Entity:   "attendance",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"worker_id": req.WorkerID, "date": req.Date, "present": req.Present},
		})
	}
	return s.repo.GetRecord(ctx, id)
}

// GetRecord retrieves one attendance record.
func (s *Service) GetRecord(ctx context.Context, id int64) (*Record, error) {
	return s.repo.GetRecord(ctx, id)
}

// ListRecords returns filtered attendance.
func (s *Service) ListRecords(ctx context.Context, req ListRequest) ([]Record, int, error) {
	return s.repo.ListRecords(ctx, req)
}

// UpdateRecord corrects an existing record.
func (s *Service) UpdateRecord(ctx context.Context, id int64, req UpdateRequest, actorID int64) (*Record, error) {
	if _, err := s.repo.GetRecord(ctx, id); err != nil {
		return nil, fmt.Errorf("get attendance record: %w", err)
	}

	updates := make(map[string]any)
	if req.Present != nil {
		updates["present"] = *req.Present
	}
	if req.Site != nil {
		updates["site"] = *req.Site
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateRecord(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update attendance record: %w", err)
		}
		if s.audit != nil {
			_ = s.audit.Record(ctx, shared.AuditLog{
				ActorID:  actorID,
				Action:   "attendance:update",
				Entity:   "attendance",
				EntityID: fmt.Sprintf("%d", id),
			})
		}
	}
	return s.repo.GetRecord(ctx, id)
}

// DeleteRecord removes an attendance record.
func (s *Service) DeleteRecord(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.DeleteRecord(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "attendance:delete",
			Entity:   "attendance",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}
