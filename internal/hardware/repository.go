package hardware

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, category, quantity, unit, price_per_unit, supplier,
	description, threshold, last_restocked, registered_by, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Unit, &it.PricePerUnit,
		&it.Supplier, &it.Description, &it.Threshold, &it.LastRestocked, &it.RegisteredBy,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// GetItem retrieves a catalog item by ID.
func (r *Repository) GetItem(ctx context.Context, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM hardware WHERE id = $1", itemColumns), id)
	return scanItem(row)
}

// ListItems returns a filtered, paginated catalog slice plus the total count.
func (r *Repository) ListItems(ctx context.Context, req ListItemsRequest) ([]Item, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.Category != nil && *req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *req.Category)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR supplier ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}
	if req.LowStock != nil && *req.LowStock {
		conditions = append(conditions, "quantity < threshold")
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM hardware %s", whereClause)
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
	query := fmt.Sprintf("SELECT %s FROM hardware %s ORDER BY name LIMIT $%d OFFSET $%d",
		itemColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Unit, &it.PricePerUnit,
			&it.Supplier, &it.Description, &it.Threshold, &it.LastRestocked, &it.RegisteredBy,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// CreateItem inserts a catalog item and returns its ID.
func (r *Repository) CreateItem(ctx context.Context, it Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hardware (name, category, quantity, unit, price_per_unit, supplier,
			description, threshold, last_restocked, registered_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), $9)
		RETURNING id
	`, it.Name, it.Category, it.Quantity, it.Unit, it.PricePerUnit, it.Supplier,
		it.Description, it.Threshold, it.RegisteredBy).Scan(&id)
	return id, err
}

// UpdateItem applies the given column updates.
func (r *Repository) UpdateItem(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE hardware SET updated_at = NOW()"
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

// DeleteItem removes a catalog item.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM hardware WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListUnderThreshold returns all items with stock under their reorder threshold.
func (r *Repository) ListUnderThreshold(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM hardware WHERE quantity < threshold ORDER BY name", itemColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Unit, &it.PricePerUnit,
			&it.Supplier, &it.Description, &it.Threshold, &it.LastRestocked, &it.RegisteredBy,
			&it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DecrementStockTx conditionally removes qty units inside an open transaction.
// The guard `quantity >= qty` makes concurrent oversells impossible; callers
// must treat ok=false as a stock shortfall and abort the transaction.
func DecrementStockTx(ctx context.Context, tx pgx.Tx, id int64, qty int) (ok bool, name string, available int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE hardware
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING name, quantity + $2
	`, id, qty).Scan(&name, &available)
	if err == nil {
		return true, name, available, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, "", 0, err
	}
	// Guard refused; report the current state for the error message.
	err = tx.QueryRow(ctx, "SELECT name, quantity FROM hardware WHERE id = $1", id).Scan(&name, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, "", 0, shared.ErrNotFound
	}
	if err != nil {
		return false, "", 0, err
	}
	return false, name, available, nil
}

// IncrementStockTx adds qty units inside an open transaction and refreshes
// the restock timestamp.
func IncrementStockTx(ctx context.Context, tx pgx.Tx, id int64, qty int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE hardware
		SET quantity = quantity + $2, last_restocked = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
