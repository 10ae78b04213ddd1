package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/platform/db"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// Repository provides PostgreSQL backed persistence for purchase orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, order_number, supplier, status, payment_status, total_amount,
	expected_date, delivered_at, notes, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Supplier, &o.Status, &o.PaymentStatus,
		&o.TotalAmount, &o.ExpectedDate, &o.DeliveredAt, &o.Notes, &o.CreatedBy,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// GetOrder retrieves a purchase order with its lines.
func (r *Repository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM purchase_orders WHERE id = $1", orderColumns), id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	items, err := r.listOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *Repository) listOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, hardware_id, name, quantity, unit_price, line_total
		FROM purchase_order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.HardwareID, &it.Name, &it.Quantity,
			&it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrders returns filtered, paginated purchase orders plus the total count.
// Lines are not loaded for listings.
func (r *Repository) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.PaymentStatus != nil && *req.PaymentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", argPos))
		args = append(args, *req.PaymentStatus)
		argPos++
	}
	if req.Supplier != nil && *req.Supplier != "" {
		conditions = append(conditions, fmt.Sprintf("supplier ILIKE $%d", argPos))
		args = append(args, "%"+*req.Supplier+"%")
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM purchase_orders %s", whereClause), args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM purchase_orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Supplier, &o.Status, &o.PaymentStatus,
			&o.TotalAmount, &o.ExpectedDate, &o.DeliveredAt, &o.Notes, &o.CreatedBy,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// CreateOrder inserts an order with its lines in one transaction and returns
// its ID. The order number comes from the shared document sequence.
func (r *Repository) CreateOrder(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := shared.NextDocumentNumberTx(ctx, tx, "purchase_order", "PO")
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO purchase_orders (order_number, supplier, status, payment_status,
				total_amount, expected_date, notes, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, number, o.Supplier, StatusPending, PaymentUnpaid, o.TotalAmount,
			o.ExpectedDate, o.Notes, o.CreatedBy).Scan(&id)
		if err != nil {
			return err
		}
		for _, it := range o.Items {
			_, err = tx.Exec(ctx, `
				INSERT INTO purchase_order_items (order_id, hardware_id, name, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id, it.HardwareID, it.Name, it.Quantity, it.UnitPrice, it.LineTotal)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateStatus moves an order to a new status. A move to delivered restocks
// every line atomically with the status change.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string, deliveredAt *time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE purchase_orders
			SET status = $2, delivered_at = $3, updated_at = NOW()
			WHERE id = $1
		`, id, status, deliveredAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if status != StatusDelivered {
			return nil
		}

		rows, err := tx.Query(ctx, "SELECT hardware_id, quantity FROM purchase_order_items WHERE order_id = $1", id)
		if err != nil {
			return err
		}
		type line struct {
			hardwareID int64
			quantity   int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.hardwareID, &l.quantity); err != nil {
				rows.Close()
				return err
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			if err := hardware.IncrementStockTx(ctx, tx, l.hardwareID, l.quantity); err != nil {
				return fmt.Errorf("restock hardware %d: %w", l.hardwareID, err)
			}
		}
		return nil
	})
}

// UpdatePaymentStatus records supplier payment progress.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE purchase_orders SET payment_status = $2, updated_at = NOW() WHERE id = $1
	`, id, paymentStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
