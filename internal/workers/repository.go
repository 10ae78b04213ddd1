package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for workers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workerColumns = "id, name, contact, role, daily_wage, registered_by, created_at, updated_at"

// GetWorker retrieves a worker by ID.
func (r *Repository) GetWorker(ctx context.Context, id int64) (*Worker, error) {
	var wk Worker
	err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM workers WHERE id = $1", workerColumns), id).
		Scan(&wk.ID, &wk.Name, &wk.Contact, &wk.Role, &wk.DailyWage, &wk.RegisteredBy, &wk.CreatedAt, &wk.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &wk, nil
}

// ListWorkers returns a filtered, paginated worker slice plus the total count.
func (r *Repository) ListWorkers(ctx context.Context, req ListWorkersRequest) ([]Worker, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR contact ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}
	if req.Role != nil && *req.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argPos))
		args = append(args, *req.Role)
		argPos++
	}

	whereClause := ""
	for i, cond := range conditions {
		if i == 0 {
			whereClause = "WHERE " + cond
		} else {
			whereClause += " AND " + cond
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM workers %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM workers %s ORDER BY name LIMIT $%d OFFSET $%d",
		workerColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Worker
	for rows.Next() {
		var wk Worker
		if err := rows.Scan(&wk.ID, &wk.Name, &wk.Contact, &wk.Role, &wk.DailyWage, &wk.RegisteredBy, &wk.CreatedAt, &wk.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, wk)
	}
	return result, total, rows.Err()
}

// CreateWorker inserts a worker and returns its ID.
func (r *Repository) CreateWorker(ctx context.Context, wk Worker) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO workers (name, contact, role, daily_wage, registered_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, wk.Name, wk.Contact, wk.Role, wk.DailyWage, wk.RegisteredBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdateWorker applies the given column updates.
func (r *Repository) UpdateWorker(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE workers SET updated_at = NOW()"
	args := []any{}
	argPos := 1
	for col, val := range updates {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, val)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteWorker removes a worker.
func (r *Repository) DeleteWorker(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM workers WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
