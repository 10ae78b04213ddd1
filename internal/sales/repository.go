package sales

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

// InsufficientStockError reports the first line that could not be covered by
// available stock during conversion. Conversion is all or nothing, so the
// whole transaction rolls back.
type InsufficientStockError struct {
	HardwareID int64
	Name       string
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// TxRepository exposes the sale mutations that must share one transaction.
type TxRepository interface {
	GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error)
	InsertSale(ctx context.Context, s *Sale) (int64, error)
	UpdateSale(ctx context.Context, id int64, updates map[string]any) error
	InsertPayment(ctx context.Context, p *Payment) (int64, error)
	DecrementStock(ctx context.Context, hardwareID int64, qty int) error
	NextDocumentNumber(ctx context.Context, name, prefix string) (string, error)
	NextYearlyDocumentNumber(ctx context.Context, name, prefix string, now time.Time) (string, error)
}

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside a RepeatableRead transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const saleColumns = `id, sale_number, quotation_number, invoice_number, customer_name,
	customer_phone, customer_email, status, payment_status, delivery_status,
	sub_total, tax_rate, tax_amount, shipping_cost, discount, total_price,
	amount_paid, balance_due, notes, valid_until, confirmed_at, date_paid,
	delivered_at, created_by, created_at, updated_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.SaleNumber, &s.QuotationNumber, &s.InvoiceNumber, &s.CustomerName,
		&s.CustomerPhone, &s.CustomerEmail, &s.Status, &s.PaymentStatus, &s.DeliveryStatus,
		&s.SubTotal, &s.TaxRate, &s.TaxAmount, &s.ShippingCost, &s.Discount, &s.TotalPrice,
		&s.AmountPaid, &s.BalanceDue, &s.Notes, &s.ValidUntil, &s.ConfirmedAt, &s.DatePaid,
		&s.DeliveredAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadSaleItems(ctx context.Context, q rowQuerier, saleID int64) ([]SaleItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, sale_id, hardware_id, name, quantity, unit_price, discount,
			discounted_price, total_price
		FROM sale_items WHERE sale_id = $1 ORDER BY id
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.HardwareID, &it.Name, &it.Quantity,
			&it.UnitPrice, &it.Discount, &it.DiscountedPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func loadPayments(ctx context.Context, q rowQuerier, saleID int64) ([]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, sale_id, amount, method, transaction_id, bank_name, cheque_number,
			card_last_four, notes, receipt_number, received_by, paid_at, created_at
		FROM sale_payments WHERE sale_id = $1 ORDER BY paid_at, id
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.Method, &p.TransactionID,
			&p.BankName, &p.ChequeNumber, &p.CardLastFour, &p.Notes, &p.ReceiptNumber,
			&p.ReceivedBy, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetSale retrieves a sale with its lines and payment ledger.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM sales WHERE id = $1", saleColumns), id)
	s, err := scanSale(row)
	if err != nil {
		return nil, err
	}
	if s.Items, err = loadSaleItems(ctx, r.pool, id); err != nil {
		return nil, err
	}
	if s.Payments, err = loadPayments(ctx, r.pool, id); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSales returns filtered, paginated sales plus the total count. Lines and
// ledgers are not loaded for listings.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.HardwareID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = s.id AND si.hardware_id = $%d)", argPos))
		args = append(args, *req.HardwareID)
		argPos++
	}
	if req.Customer != nil && *req.Customer != "" {
		conditions = append(conditions, fmt.Sprintf("s.customer_name ILIKE $%d", argPos))
		args = append(args, "%"+*req.Customer+"%")
		argPos++
	}
	if req.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("s.created_by = $%d", argPos))
		args = append(args, *req.CreatedBy)
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM sales s %s", whereClause), args...).Scan(&total); err != nil {
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
	cols := "s." + saleColumns
	query := fmt.Sprintf("SELECT %s FROM sales s %s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d",
		cols, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.SaleNumber, &s.QuotationNumber, &s.InvoiceNumber, &s.CustomerName,
			&s.CustomerPhone, &s.CustomerEmail, &s.Status, &s.PaymentStatus, &s.DeliveryStatus,
			&s.SubTotal, &s.TaxRate, &s.TaxAmount, &s.ShippingCost, &s.Discount, &s.TotalPrice,
			&s.AmountPaid, &s.BalanceDue, &s.Notes, &s.ValidUntil, &s.ConfirmedAt, &s.DatePaid,
			&s.DeliveredAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

// ListExpiringQuotations returns open quotations whose validity window ends
// within the given horizon, for the expiry sweep.
func (r *Repository) ListExpiringQuotations(ctx context.Context, now time.Time, horizon time.Duration) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM sales
		WHERE status = $1 AND valid_until IS NOT NULL AND valid_until <= $2
		ORDER BY valid_until
	`, saleColumns), StatusQuotation, now.Add(horizon))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.SaleNumber, &s.QuotationNumber, &s.InvoiceNumber, &s.CustomerName,
			&s.CustomerPhone, &s.CustomerEmail, &s.Status, &s.PaymentStatus, &s.DeliveryStatus,
			&s.SubTotal, &s.TaxRate, &s.TaxAmount, &s.ShippingCost, &s.Discount, &s.TotalPrice,
			&s.AmountPaid, &s.BalanceDue, &s.Notes, &s.ValidUntil, &s.ConfirmedAt, &s.DatePaid,
			&s.DeliveredAt, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// txRepository implements TxRepository over an open pgx transaction.
type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error) {
	row := t.tx.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM sales WHERE id = $1 FOR UPDATE", saleColumns), id)
	s, err := scanSale(row)
	if err != nil {
		return nil, err
	}
	if s.Items, err = loadSaleItems(ctx, t.tx, id); err != nil {
		return nil, err
	}
	if s.Payments, err = loadPayments(ctx, t.tx, id); err != nil {
		return nil, err
	}
	return s, nil
}

func (t *txRepository) InsertSale(ctx context.Context, s *Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO sales (sale_number, quotation_number, invoice_number, customer_name,
			customer_phone, customer_email, status, payment_status, delivery_status,
			sub_total, tax_rate, tax_amount, shipping_cost, discount, total_price,
			amount_paid, balance_due, notes, valid_until, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20)
		RETURNING id
	`, s.SaleNumber, s.QuotationNumber, s.InvoiceNumber, s.CustomerName,
		s.CustomerPhone, s.CustomerEmail, s.Status, s.PaymentStatus, s.DeliveryStatus,
		s.SubTotal, s.TaxRate, s.TaxAmount, s.ShippingCost, s.Discount, s.TotalPrice,
		s.AmountPaid, s.BalanceDue, s.Notes, s.ValidUntil, s.CreatedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, it := range s.Items {
		_, err = t.tx.Exec(ctx, `
			INSERT INTO sale_items (sale_id, hardware_id, name, quantity, unit_price,
				discount, discounted_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, it.HardwareID, it.Name, it.Quantity, it.UnitPrice,
			it.Discount, it.DiscountedPrice, it.TotalPrice)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (t *txRepository) UpdateSale(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE sales SET updated_at = NOW()"
	args := []any{}
	argPos := 1
	for col, val := range updates {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, val)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepository) InsertPayment(ctx context.Context, p *Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO sale_payments (sale_id, amount, method, transaction_id, bank_name,
			cheque_number, card_last_four, notes, receipt_number, received_by, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, p.SaleID, p.Amount, p.Method, p.TransactionID, p.BankName,
		p.ChequeNumber, p.CardLastFour, p.Notes, p.ReceiptNumber, p.ReceivedBy, p.PaidAt).Scan(&id)
	return id, err
}

// DecrementStock removes qty units of a catalog item, failing with a typed
// error when stock cannot cover the line.
func (t *txRepository) DecrementStock(ctx context.Context, hardwareID int64, qty int) error {
	ok, name, available, err := hardware.DecrementStockTx(ctx, t.tx, hardwareID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return &InsufficientStockError{
			HardwareID: hardwareID,
			Name:       name,
			Requested:  qty,
			Available:  available,
		}
	}
	return nil
}

func (t *txRepository) NextDocumentNumber(ctx context.Context, name, prefix string) (string, error) {
	return shared.NextDocumentNumberTx(ctx, t.tx, name, prefix)
}

func (t *txRepository) NextYearlyDocumentNumber(ctx context.Context, name, prefix string, now time.Time) (string, error) {
	return shared.NextYearlyDocumentNumberTx(ctx, t.tx, name, prefix, now)
}
