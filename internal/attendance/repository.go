package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for attendance records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `a.id, a.worker_id, w.name, a.date, a.present, a.site,
	a.marked_by, a.created_at, a.updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.WorkerID, &rec.WorkerName, &rec.Date, &rec.Present,
		&rec.Site, &rec.MarkedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetRecord retrieves one attendance record with the worker name joined in.
func (r *Repository) GetRecord(ctx context.Context, id int64) (*Record, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM attendance a
		JOIN workers w ON w.id = a.worker_id
		WHERE a.id = $1
	`, recordColumns), id)
	return scanRecord(row)
}

// ListRecords returns filtered, paginated attendance plus the total count.
func (r *Repository) ListRecords(ctx context.Context, req ListRequest) ([]Record, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.WorkerID != nil {
		conditions = append(conditions, fmt.Sprintf("a.worker_id = $%d", argPos))
		args = append(args, *req.WorkerID)
		argPos++
	}
	if req.Site != nil && *req.Site != "" {
		conditions = append(conditions, fmt.Sprintf("a.site = $%d", argPos))
		args = append(args, *req.Site)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argPos))
		args = append(args, *req.DateTo)
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance a %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf(`
		SELECT %s FROM attendance a
		JOIN workers w ON w.id = a.worker_id
		%s
		ORDER BY a.date DESC, w.name
		LIMIT $%d OFFSET $%d
	`, recordColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.WorkerID, &rec.WorkerName, &rec.Date, &rec.Present,
			&rec.Site, &rec.MarkedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// CreateRecord inserts an attendance record. The (worker_id, date) pair is
// unique, so marking the same worker twice for one day fails.
func (r *Repository) CreateRecord(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO attendance (worker_id, date, present, site, marked_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.WorkerID, rec.Date, rec.Present, rec.Site, rec.MarkedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, shared.ErrDuplicate
			case "23503":
				return 0, shared.ErrNotFound
			}
		}
		return 0, err
	}
	return id, nil
}

// UpdateRecord applies the given column updates.
func (r *Repository) UpdateRecord(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE attendance SET updated_at = NOW()"
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
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteRecord removes an attendance record.
func (r *Repository) DeleteRecord(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM attendance WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
