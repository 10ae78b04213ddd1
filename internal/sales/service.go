package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
	ListExpiringQuotations(ctx context.Context, now time.Time, horizon time.Duration) ([]Sale, error)
}

// CatalogPort looks up catalog items when pricing a quotation.
type CatalogPort interface {
	GetItem(ctx context.Context, id int64) (*hardware.Item, error)
	ListItems(ctx context.Context, req hardware.ListItemsRequest) ([]hardware.Item, int, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// NotifierPort enqueues background notifications.
type NotifierPort interface {
	EnqueueLowStockScan(ctx context.Context) error
}

// Service coordinates the sale lifecycle.
type Service struct {
	repo     RepositoryPort
	catalog  CatalogPort
	audit    AuditPort
	notifier NotifierPort
	now      func() time.Time
}

// NewService builds a Service.
func NewService(repo RepositoryPort, catalog CatalogPort, audit AuditPort) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		audit:   audit,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier attaches the queue used to flag stock running low after a
// conversion. The worker binary runs without one.
func (s *Service) SetNotifier(notifier NotifierPort) {
	s.notifier = notifier
}

// ListProducts returns the sellable catalog for the sales desk, with the
// computed low-stock and availability flags.
func (s *Service) ListProducts(ctx context.Context, req hardware.ListItemsRequest) ([]hardware.ItemView, int, error) {
	items, total, err := s.catalog.ListItems(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	views := make([]hardware.ItemView, len(items))
	for i, item := range items {
		views[i] = hardware.NewItemView(item)
	}
	return views, total, nil
}

// CreateQuotation opens a sale as a quotation. Pricing is snapshotted from
// the catalog at this moment; a custom line price overrides the catalog one.
// Stock is not touched until the quotation is converted.
func (s *Service) CreateQuotation(ctx context.Context, req CreateQuotationRequest, createdBy int64) (*Sale, error) {
	now := s.now()
	validUntil := now.AddDate(0, 0, QuotationValidityDays)

	sale := Sale{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		Status:         StatusQuotation,
		PaymentStatus:  PaymentPending,
		DeliveryStatus: DeliveryPending,
		TaxRate:        req.TaxRate,
		ShippingCost:   req.ShippingCost,
		Discount:       req.Discount,
		Notes:          req.Notes,
		ValidUntil:     &validUntil,
		CreatedBy:      createdBy,
	}

	for _, line := range req.Items {
		item, err := s.catalog.GetItem(ctx, line.HardwareID)
		if err != nil {
			return nil, fmt.Errorf("resolve hardware %d: %w", line.HardwareID, err)
		}
		unitPrice := item.PricePerUnit
		if line.CustomPrice != nil {
			unitPrice = *line.CustomPrice
		}
		sale.Items = append(sale.Items, SaleItem{
			HardwareID: item.ID,
			Name:       item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Discount:   line.Discount,
		})
	}
	ComputeTotals(&sale)

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		if sale.SaleNumber, err = tx.NextDocumentNumber(ctx, "sale", "SALE"); err != nil {
			return err
		}
		if sale.QuotationNumber, err = tx.NextYearlyDocumentNumber(ctx, "quotation", "QT", now); err != nil {
			return err
		}
		id, err = tx.InsertSale(ctx, &sale)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  createdBy,
			Action:   "sales:quote",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"customer": req.CustomerName, "total": sale.TotalPrice},
		})
	}
	return s.repo.GetSale(ctx, id)
}

// ConvertToInvoice confirms a quotation. Every line's stock is checked and
// deducted in one transaction; any shortfall rolls the whole conversion back
// and reports the failing product.
func (s *Service) ConvertToInvoice(ctx context.Context, id int64, actorID int64) (*Sale, error) {
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != StatusQuotation {
			return fmt.Errorf("%w: only a quotation can be converted, sale is %s",
				shared.ErrInvalidState, sale.Status)
		}
		if sale.Expired(now) {
			return fmt.Errorf("%w: quotation expired on %s",
				shared.ErrInvalidState, sale.ValidUntil.Format("2006-01-02"))
		}

		for _, line := range sale.Items {
			if err := tx.DecrementStock(ctx, line.HardwareID, line.Quantity); err != nil {
				return err
			}
		}

		invoiceNumber, err := tx.NextYearlyDocumentNumber(ctx, "invoice", "INV", now)
		if err != nil {
			return err
		}
		return tx.UpdateSale(ctx, id, map[string]any{
			"status":         StatusConfirmed,
			"invoice_number": invoiceNumber,
			"confirmed_at":   now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("convert to invoice: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "sales:convert",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", id),
		})
	}

	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		for _, line := range sale.Items {
			item, err := s.catalog.GetItem(ctx, line.HardwareID)
			if err != nil {
				continue
			}
			if item.LowStock() {
				_ = s.notifier.EnqueueLowStockScan(ctx)
				break
			}
		}
	}
	return sale, nil
}

// RecordPayment appends one ledger entry. The receipt number is allocated in
// the same transaction, so every payment carries one from the start. The
// running totals are reconciled: the balance floors at zero on overpayment,
// and the settlement date is stamped only by the payment that settles.
func (s *Service) RecordPayment(ctx context.Context, id int64, req RecordPaymentRequest, receivedBy int64) (*Sale, *Payment, error) {
	now := s.now()
	var payment Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !sale.AcceptsPayments() {
			return fmt.Errorf("%w: a %s sale cannot take payments",
				shared.ErrInvalidState, sale.Status)
		}

		receiptNumber, err := tx.NextYearlyDocumentNumber(ctx, "receipt", "RCPT", now)
		if err != nil {
			return err
		}
		payment = Payment{
			SaleID:        id,
			Amount:        req.Amount,
			Method:        req.Method,
			TransactionID: req.TransactionID,
			BankName:      req.BankName,
			ChequeNumber:  req.ChequeNumber,
			CardLastFour:  req.CardLastFour,
			Notes:         req.Notes,
			ReceiptNumber: receiptNumber,
			ReceivedBy:    receivedBy,
			PaidAt:        now,
		}
		if payment.ID, err = tx.InsertPayment(ctx, &payment); err != nil {
			return err
		}

		sale.AmountPaid = round2(sale.AmountPaid + req.Amount)
		sale.BalanceDue = round2(sale.TotalPrice - sale.AmountPaid)
		if sale.BalanceDue < 0 {
			sale.BalanceDue = 0
		}
		sale.PaymentStatus = ReconcilePaymentStatus(sale)

		updates := map[string]any{
			"amount_paid":    sale.AmountPaid,
			"balance_due":    sale.BalanceDue,
			"payment_status": sale.PaymentStatus,
		}
		if sale.PaymentStatus == PaymentPaid && sale.DatePaid == nil {
			updates["date_paid"] = now
		}
		if next := ReconcileStatus(sale); next != sale.Status {
			updates["status"] = next
		}
		return tx.UpdateSale(ctx, id, updates)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("record payment: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  receivedBy,
			Action:   "sales:payment",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"amount": req.Amount, "method": req.Method, "receipt": payment.ReceiptNumber},
		})
	}
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sale, &payment, nil
}

// GenerateReceipt projects one ledger entry into a printable receipt.
// The index addresses the ledger in payment order, starting at zero.
func (s *Service) GenerateReceipt(ctx context.Context, saleID int64, paymentIndex int, actor shared.Actor) (*Receipt, error) {
	sale, err := s.getScoped(ctx, saleID, actor)
	if err != nil {
		return nil, err
	}
	if paymentIndex < 0 || paymentIndex >= len(sale.Payments) {
		return nil, fmt.Errorf("%w: sale has %d payments, requested index %d",
			shared.ErrOutOfRange, len(sale.Payments), paymentIndex)
	}
	receipt := BuildReceipt(sale, sale.Payments[paymentIndex])
	return &receipt, nil
}

// GetSale retrieves one sale. Admin and finance see every sale; other roles
// only their own.
func (s *Service) GetSale(ctx context.Context, id int64, actor shared.Actor) (*Sale, error) {
	return s.getScoped(ctx, id, actor)
}

func (s *Service) getScoped(ctx context.Context, id int64, actor shared.Actor) (*Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != shared.RoleAdmin && actor.Role != shared.RoleFinance && sale.CreatedBy != actor.ID {
		return nil, shared.ErrForbidden
	}
	return sale, nil
}

// ListSalesHistory returns the filtered history. Non-admin, non-finance
// actors are scoped to sales they created regardless of the filter.
func (s *Service) ListSalesHistory(ctx context.Context, req ListSalesRequest, actor shared.Actor) ([]Sale, int, error) {
	if actor.Role != shared.RoleAdmin && actor.Role != shared.RoleFinance {
		req.CreatedBy = &actor.ID
	}
	return s.repo.ListSales(ctx, req)
}

// CancelSale cancels a sale. Stock deducted at conversion is not returned;
// returns go through the delivery axis instead.
func (s *Service) CancelSale(ctx context.Context, id int64, actorID int64) (*Sale, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status == StatusCancelled || sale.Status == StatusDelivered {
			return fmt.Errorf("%w: a %s sale cannot be cancelled",
				shared.ErrInvalidState, sale.Status)
		}
		return tx.UpdateSale(ctx, id, map[string]any{"status": StatusCancelled})
	})
	if err != nil {
		return nil, fmt.Errorf("cancel sale: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "sales:cancel",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return s.repo.GetSale(ctx, id)
}

// UpdateDeliveryStatus moves the delivery axis. Reaching delivered stamps
// the delivery time and advances the overall status.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, id int64, req UpdateDeliveryRequest, actorID int64) (*Sale, error) {
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status == StatusQuotation || sale.Status == StatusCancelled {
			return fmt.Errorf("%w: a %s sale has no delivery to track",
				shared.ErrInvalidState, sale.Status)
		}

		sale.DeliveryStatus = req.DeliveryStatus
		updates := map[string]any{"delivery_status": req.DeliveryStatus}
		if req.DeliveryStatus == DeliveryDelivered && sale.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
		if next := ReconcileStatus(sale); next != sale.Status {
			updates["status"] = next
		}
		return tx.UpdateSale(ctx, id, updates)
	})
	if err != nil {
		return nil, fmt.Errorf("update delivery status: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "sales:delivery",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"delivery_status": req.DeliveryStatus},
		})
	}
	return s.repo.GetSale(ctx, id)
}

// ListExpiringQuotations surfaces quotations ending within the horizon, for
// the background sweep.
func (s *Service) ListExpiringQuotations(ctx context.Context, horizon time.Duration) ([]Sale, error) {
	return s.repo.ListExpiringQuotations(ctx, s.now(), horizon)
}
