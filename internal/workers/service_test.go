package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

type memoryWorkerRepo struct {
	workers map[int64]*Worker
	nextID  int64
}

func newMemoryWorkerRepo() *memoryWorkerRepo {
	return &memoryWorkerRepo{workers: make(map[int64]*Worker)}
}

func (r *memoryWorkerRepo) GetWorker(ctx context.Context, id int64) (*Worker, error) {
	wk, ok := r.workers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *wk
	return &cp, nil
}

func (r *memoryWorkerRepo) ListWorkers(ctx context.Context, req ListWorkersRequest) ([]Worker, int, error) {
	var out []Worker
	for _, wk := range r.workers {
		if req.Role != nil && wk.Role != *req.Role {
			continue
		}
		out = append(out, *wk)
	}
	return out, len(out), nil
}

func (r *memoryWorkerRepo) CreateWorker(ctx context.Context, wk Worker) (int64, error) {
	for _, existing := range r.workers {
		if existing.Contact == wk.Contact {
			return 0, shared.ErrDuplicate
		}
	}
	r.nextID++
	wk.ID = r.nextID
	r.workers[wk.ID] = &wk
	return wk.ID, nil
}

func (r *memoryWorkerRepo) UpdateWorker(ctx context.Context, id int64, updates map[string]any) error {
	wk, ok := r.workers[id]
	if !ok {
		return shared.ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "name":
			wk.Name = val.(string)
		case "contact":
			wk.Contact = val.(string)
		case "role":
			wk.Role = val.(string)
		case "daily_wage":
			wk.DailyWage = val.(float64)
		}
	}
	return nil
}

func (r *memoryWorkerRepo) DeleteWorker(ctx context.Context, id int64) error {
	if _, ok := r.workers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.workers, id)
	return nil
}

func TestRegisterWorker(t *testing.T) {
	svc := NewService(newMemoryWorkerRepo(), nil)

	wk, err := svc.RegisterWorker(context.Background(), CreateWorkerRequest{
		Name: "John Okello", Contact: "+256700111222", Role: "mason", DailyWage: 35000,
	}, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), wk.RegisteredBy)
	require.InDelta(t, 35000.0, wk.DailyWage, 0.001)
}

func TestRegisterWorkerDuplicateContact(t *testing.T) {
	svc := NewService(newMemoryWorkerRepo(), nil)
	ctx := context.Background()

	_, err := svc.RegisterWorker(ctx, CreateWorkerRequest{
		Name: "John Okello", Contact: "+256700111222", Role: "mason", DailyWage: 35000,
	}, 2)
	require.NoError(t, err)

	_, err = svc.RegisterWorker(ctx, CreateWorkerRequest{
		Name: "Other John", Contact: "+256700111222", Role: "porter", DailyWage: 20000,
	}, 2)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateWorkerWage(t *testing.T) {
	svc := NewService(newMemoryWorkerRepo(), nil)
	ctx := context.Background()

	wk, err := svc.RegisterWorker(ctx, CreateWorkerRequest{
		Name: "Peter Ssali", Contact: "+256700333444", Role: "electrician", DailyWage: 45000,
	}, 2)
	require.NoError(t, err)

	wage := 50000.0
	updated, err := svc.UpdateWorker(ctx, wk.ID, UpdateWorkerRequest{DailyWage: &wage}, 2)
	require.NoError(t, err)
	require.InDelta(t, 50000.0, updated.DailyWage, 0.001)
}

func TestDeleteMissingWorker(t *testing.T) {
	svc := NewService(newMemoryWorkerRepo(), nil)
	err := svc.DeleteWorker(context.Background(), 99, 2)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
