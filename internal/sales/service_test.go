package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

type stockEntry struct {
	name string
	qty  int
}

type memorySalesRepo struct {
	sales  map[int64]*Sale
	stock  map[int64]*stockEntry
	seqs   map[string]int64
	nextID int64
}

type memorySalesTx struct {
	repo *memorySalesRepo
}

func newMemorySalesRepo() *memorySalesRepo {
	return &memorySalesRepo{
		sales: make(map[int64]*Sale),
		stock: make(map[int64]*stockEntry),
		seqs:  make(map[string]int64),
	}
}

func cloneSale(s *Sale) *Sale {
	out := *s
	out.Items = append([]SaleItem(nil), s.Items...)
	out.Payments = append([]Payment(nil), s.Payments...)
	return &out
}

func (r *memorySalesRepo) snapshot() (map[int64]*Sale, map[int64]*stockEntry, map[string]int64, int64) {
	sales := make(map[int64]*Sale, len(r.sales))
	for id, s := range r.sales {
		sales[id] = cloneSale(s)
	}
	stock := make(map[int64]*stockEntry, len(r.stock))
	for id, e := range r.stock {
		cp := *e
		stock[id] = &cp
	}
	seqs := make(map[string]int64, len(r.seqs))
	for k, v := range r.seqs {
		seqs[k] = v
	}
	return sales, stock, seqs, r.nextID
}

func (r *memorySalesRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	sales, stock, seqs, next := r.snapshot()
	if err := fn(ctx, &memorySalesTx{repo: r}); err != nil {
		r.sales, r.stock, r.seqs, r.nextID = sales, stock, seqs, next
		return err
	}
	return nil
}

func (r *memorySalesRepo) GetSale(ctx context.Context, id int64) (*Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneSale(s), nil
}

func (r *memorySalesRepo) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	var out []Sale
	for _, s := range r.sales {
		if req.Status != nil && s.Status != *req.Status {
			continue
		}
		if req.CreatedBy != nil && s.CreatedBy != *req.CreatedBy {
			continue
		}
		out = append(out, *cloneSale(s))
	}
	return out, len(out), nil
}

func (r *memorySalesRepo) ListExpiringQuotations(ctx context.Context, now time.Time, horizon time.Duration) ([]Sale, error) {
	var out []Sale
	for _, s := range r.sales {
		if s.Status != StatusQuotation || s.ValidUntil == nil {
			continue
		}
		if s.ValidUntil.After(now.Add(horizon)) {
			continue
		}
		out = append(out, *cloneSale(s))
	}
	return out, nil
}

func (tx *memorySalesTx) GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error) {
	return tx.repo.GetSale(ctx, id)
}

func (tx *memorySalesTx) InsertSale(ctx context.Context, s *Sale) (int64, error) {
	tx.repo.nextID++
	id := tx.repo.nextID
	cp := cloneSale(s)
	cp.ID = id
	for i := range cp.Items {
		cp.Items[i].ID = int64(i + 1)
		cp.Items[i].SaleID = id
	}
	tx.repo.sales[id] = cp
	return id, nil
}

func (tx *memorySalesTx) UpdateSale(ctx context.Context, id int64, updates map[string]any) error {
	s, ok := tx.repo.sales[id]
	if !ok {
		return shared.ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "status":
			s.Status = val.(string)
		case "payment_status":
			s.PaymentStatus = val.(string)
		case "delivery_status":
			s.DeliveryStatus = val.(string)
		case "invoice_number":
			s.InvoiceNumber = val.(string)
		case "amount_paid":
			s.AmountPaid = val.(float64)
		case "balance_due":
			s.BalanceDue = val.(float64)
		case "confirmed_at":
			t := val.(time.Time)
			s.ConfirmedAt = &t
		case "date_paid":
			t := val.(time.Time)
			s.DatePaid = &t
		case "delivered_at":
			t := val.(time.Time)
			s.DeliveredAt = &t
		default:
			return fmt.Errorf("unexpected column %s", col)
		}
	}
	return nil
}

func (tx *memorySalesTx) InsertPayment(ctx context.Context, p *Payment) (int64, error) {
	s, ok := tx.repo.sales[p.SaleID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	tx.repo.nextID++
	cp := *p
	cp.ID = tx.repo.nextID
	s.Payments = append(s.Payments, cp)
	return cp.ID, nil
}

func (tx *memorySalesTx) DecrementStock(ctx context.Context, hardwareID int64, qty int) error {
	entry, ok := tx.repo.stock[hardwareID]
	if !ok {
		return shared.ErrNotFound
	}
	if entry.qty < qty {
		return &InsufficientStockError{
			HardwareID: hardwareID,
			Name:       entry.name,
			Requested:  qty,
			Available:  entry.qty,
		}
	}
	entry.qty -= qty
	return nil
}

func (tx *memorySalesTx) NextDocumentNumber(ctx context.Context, name, prefix string) (string, error) {
	tx.repo.seqs[name]++
	return fmt.Sprintf("%s-%06d", prefix, tx.repo.seqs[name]), nil
}

func (tx *memorySalesTx) NextYearlyDocumentNumber(ctx context.Context, name, prefix string, now time.Time) (string, error) {
	key := fmt.Sprintf("%s:%d", name, now.Year())
	tx.repo.seqs[key]++
	return fmt.Sprintf("%s-%02d%05d", prefix, now.Year()%100, tx.repo.seqs[key]), nil
}

type memoryCatalog struct {
	items map[int64]hardware.Item
}

func (c *memoryCatalog) GetItem(ctx context.Context, id int64) (*hardware.Item, error) {
	it, ok := c.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := it
	return &cp, nil
}

func (c *memoryCatalog) ListItems(ctx context.Context, req hardware.ListItemsRequest) ([]hardware.Item, int, error) {
	var out []hardware.Item
	for _, it := range c.items {
		out = append(out, it)
	}
	return out, len(out), nil
}

var testClock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memorySalesRepo) {
	repo := newMemorySalesRepo()
	repo.stock[1] = &stockEntry{name: "Portland Cement 50kg", qty: 100}
	repo.stock[2] = &stockEntry{name: "Steel Rebar 12mm", qty: 5}

	catalog := &memoryCatalog{items: map[int64]hardware.Item{
		1: {ID: 1, Name: "Portland Cement 50kg", PricePerUnit: 35, Quantity: 100, Unit: "bags"},
		2: {ID: 2, Name: "Steel Rebar 12mm", PricePerUnit: 28000, Quantity: 5, Unit: "pieces"},
	}}

	svc := NewService(repo, catalog, nil)
	svc.now = func() time.Time { return testClock }
	return svc, repo
}

func requireLedgerInvariant(t *testing.T, s *Sale) {
	t.Helper()
	if s.AmountPaid <= s.TotalPrice {
		require.InDelta(t, s.TotalPrice, s.AmountPaid+s.BalanceDue, 0.005)
	} else {
		require.InDelta(t, 0.0, s.BalanceDue, 0.005)
	}
}

func TestCreateQuotation(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	sale, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		TaxRate:      16,
		ShippingCost: 30,
		Discount:     10,
		Items: []SaleLineRequest{
			{HardwareID: 1, Quantity: 10, Discount: 10},
		},
	}, 7)
	require.NoError(t, err)

	require.Equal(t, "SALE-000001", sale.SaleNumber)
	require.Equal(t, "QT-2600001", sale.QuotationNumber)
	require.Empty(t, sale.InvoiceNumber)
	require.Equal(t, StatusQuotation, sale.Status)
	require.Equal(t, PaymentPending, sale.PaymentStatus)
	require.Equal(t, DeliveryPending, sale.DeliveryStatus)
	require.InDelta(t, 315.0, sale.SubTotal, 0.001)
	require.InDelta(t, 385.4, sale.TotalPrice, 0.001)
	require.Equal(t, testClock.AddDate(0, 0, 30), *sale.ValidUntil)

	// Quoting must not touch stock.
	require.Equal(t, 100, repo.stock[1].qty)
}

func TestCreateQuotationCustomPrice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	custom := 30.0
	sale, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Cash Customer",
		Items: []SaleLineRequest{
			{HardwareID: 1, Quantity: 2, CustomPrice: &custom},
		},
	}, 7)
	require.NoError(t, err)
	require.InDelta(t, 30.0, sale.Items[0].UnitPrice, 0.001)
	require.InDelta(t, 60.0, sale.TotalPrice, 0.001)
}

func TestConvertToInvoice(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items: []SaleLineRequest{
			{HardwareID: 1, Quantity: 20},
			{HardwareID: 2, Quantity: 3},
		},
	}, 7)
	require.NoError(t, err)

	sale, err := svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, sale.Status)
	require.Equal(t, "INV-2600001", sale.InvoiceNumber)
	require.NotNil(t, sale.ConfirmedAt)

	require.Equal(t, 80, repo.stock[1].qty)
	require.Equal(t, 2, repo.stock[2].qty)
}

func TestConvertToInvoiceAllOrNothing(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items: []SaleLineRequest{
			{HardwareID: 1, Quantity: 20},
			{HardwareID: 2, Quantity: 6}, // only 5 on hand
		},
	}, 7)
	require.NoError(t, err)

	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "Steel Rebar 12mm", stockErr.Name)
	require.Equal(t, 6, stockErr.Requested)
	require.Equal(t, 5, stockErr.Available)

	// Nothing committed: the first line's stock is back and the sale is
	// still a quotation without an invoice number.
	require.Equal(t, 100, repo.stock[1].qty)
	require.Equal(t, 5, repo.stock[2].qty)
	sale, err := repo.GetSale(ctx, quote.ID)
	require.NoError(t, err)
	require.Equal(t, StatusQuotation, sale.Status)
	require.Empty(t, sale.InvoiceNumber)
}

type memoryNotifier struct {
	lowStockScans int
}

func (n *memoryNotifier) EnqueueLowStockScan(ctx context.Context) error {
	n.lowStockScans++
	return nil
}

func TestConvertToInvoiceFlagsLowStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Rebar carries a reorder threshold above its remaining stock.
	catalog := svc.catalog.(*memoryCatalog)
	rebar := catalog.items[2]
	rebar.Threshold = 10
	catalog.items[2] = rebar

	notifier := &memoryNotifier{}
	svc.SetNotifier(notifier)

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 2, Quantity: 3}},
	}, 7)
	require.NoError(t, err)

	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 1, notifier.lowStockScans)
}

func TestConvertRequiresQuotation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)

	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestConvertExpiredQuotation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	svc.now = func() time.Time { return testClock.AddDate(0, 0, 31) }
	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRecordPaymentRejectedOnQuotation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(ctx, quote.ID, RecordPaymentRequest{Amount: 10, Method: MethodCash}, 9)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRecordPaymentLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		TaxRate:      16,
		ShippingCost: 30,
		Discount:     10,
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 10, Discount: 10}},
	}, 7)
	require.NoError(t, err)
	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)

	sale, payment, err := svc.RecordPayment(ctx, quote.ID, RecordPaymentRequest{
		Amount: 200, Method: MethodCash,
	}, 9)
	require.NoError(t, err)
	require.Equal(t, "RCPT-2600001", payment.ReceiptNumber)
	require.Equal(t, PaymentPartial, sale.PaymentStatus)
	require.Equal(t, StatusConfirmed, sale.Status)
	require.Nil(t, sale.DatePaid)
	require.InDelta(t, 200.0, sale.AmountPaid, 0.001)
	require.InDelta(t, 185.4, sale.BalanceDue, 0.001)
	requireLedgerInvariant(t, sale)

	sale, payment, err = svc.RecordPayment(ctx, quote.ID, RecordPaymentRequest{
		Amount: 185.4, Method: MethodBankTransfer, TransactionID: "TX-9001", BankName: "Stanbic",
	}, 9)
	require.NoError(t, err)
	require.Equal(t, "RCPT-2600002", payment.ReceiptNumber)
	require.Equal(t, PaymentPaid, sale.PaymentStatus)
	require.Equal(t, StatusPaid, sale.Status)
	require.NotNil(t, sale.DatePaid)
	require.InDelta(t, 0.0, sale.BalanceDue, 0.001)
	requireLedgerInvariant(t, sale)
	firstPaid := *sale.DatePaid

	// Overpayment clamps the balance and never re-stamps the settlement.
	svc.now = func() time.Time { return testClock.Add(48 * time.Hour) }
	sale, _, err = svc.RecordPayment(ctx, quote.ID, RecordPaymentRequest{
		Amount: 50, Method: MethodCash,
	}, 9)
	require.NoError(t, err)
	require.InDelta(t, 435.4, sale.AmountPaid, 0.001)
	require.InDelta(t, 0.0, sale.BalanceDue, 0.001)
	require.Equal(t, firstPaid, *sale.DatePaid)
	require.Len(t, sale.Payments, 3)
}

func TestListProductsFlags(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	catalog := svc.catalog.(*memoryCatalog)
	rebar := catalog.items[2]
	rebar.Threshold = 10
	catalog.items[2] = rebar
	catalog.items[3] = hardware.Item{ID: 3, Name: "Generator 5kVA", PricePerUnit: 4200000, Quantity: 0, Threshold: 2}

	products, total, err := svc.ListProducts(ctx, hardware.ListItemsRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 3, total)

	byID := make(map[int64]hardware.ItemView, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	require.False(t, byID[1].LowStock)
	require.True(t, byID[1].Available)
	require.True(t, byID[2].LowStock)
	require.True(t, byID[2].Available)
	require.True(t, byID[3].LowStock)
	require.False(t, byID[3].Available)
}

func TestGenerateReceipt(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	admin := shared.Actor{ID: 1, Role: shared.RoleAdmin}

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 2, Quantity: 1, Discount: 10}},
	}, 7)
	require.NoError(t, err)
	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)
	_, _, err = svc.RecordPayment(ctx, quote.ID, RecordPaymentRequest{
		Amount: 25200, Method: MethodCash, Notes: "paid at the counter",
	}, 9)
	require.NoError(t, err)

	receipt, err := svc.GenerateReceipt(ctx, quote.ID, 0, admin)
	require.NoError(t, err)
	require.Equal(t, "RCPT-2600001", receipt.ReceiptNumber)
	require.Equal(t, "INV-2600001", receipt.InvoiceNumber)
	require.Equal(t, "25,200.00", receipt.PaymentAmount)
	require.Equal(t, "0.00", receipt.BalanceDue)
	require.True(t, receipt.FullySettled)
	require.Equal(t, int64(7), receipt.SoldBy)
	require.Equal(t, int64(9), receipt.ReceivedBy)
	require.Equal(t, "paid at the counter", receipt.Notes)

	// Lines carry both the raw unit price and the discounted one.
	require.Len(t, receipt.Items, 1)
	require.Equal(t, "28,000.00", receipt.Items[0].UnitPrice)
	require.InDelta(t, 10.0, receipt.Items[0].DiscountPercent, 0.001)
	require.Equal(t, "25,200.00", receipt.Items[0].DiscountedPrice)
	require.Equal(t, "25,200.00", receipt.Items[0].Total)

	_, err = svc.GenerateReceipt(ctx, quote.ID, 5, admin)
	require.ErrorIs(t, err, shared.ErrOutOfRange)
	_, err = svc.GenerateReceipt(ctx, quote.ID, -1, admin)
	require.ErrorIs(t, err, shared.ErrOutOfRange)
}

func TestGetSaleScoped(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	_, err = svc.GetSale(ctx, quote.ID, shared.Actor{ID: 8, Role: shared.RoleSales})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.GetSale(ctx, quote.ID, shared.Actor{ID: 7, Role: shared.RoleSales})
	require.NoError(t, err)

	_, err = svc.GetSale(ctx, quote.ID, shared.Actor{ID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)
}

func TestListSalesHistoryScoping(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Customer A",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)
	_, err = svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Customer B",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 8)
	require.NoError(t, err)

	mine, total, err := svc.ListSalesHistory(ctx, ListSalesRequest{}, shared.Actor{ID: 7, Role: shared.RoleSales})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Customer A", mine[0].CustomerName)

	all, total, err := svc.ListSalesHistory(ctx, ListSalesRequest{}, shared.Actor{ID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)
}

func TestCancelSaleKeepsStock(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 10}},
	}, 7)
	require.NoError(t, err)
	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 90, repo.stock[1].qty)

	sale, err := svc.CancelSale(ctx, quote.ID, 7)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, sale.Status)
	// Deducted stock stays deducted; returns go through the delivery axis.
	require.Equal(t, 90, repo.stock[1].qty)

	_, err = svc.CancelSale(ctx, quote.ID, 7)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	_, err = svc.UpdateDeliveryStatus(ctx, quote.ID, UpdateDeliveryRequest{DeliveryStatus: DeliveryShipped}, 7)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)

	sale, err := svc.UpdateDeliveryStatus(ctx, quote.ID, UpdateDeliveryRequest{DeliveryStatus: DeliveryShipped}, 7)
	require.NoError(t, err)
	require.Equal(t, DeliveryShipped, sale.DeliveryStatus)
	require.Equal(t, StatusConfirmed, sale.Status)

	sale, err = svc.UpdateDeliveryStatus(ctx, quote.ID, UpdateDeliveryRequest{DeliveryStatus: DeliveryDelivered}, 7)
	require.NoError(t, err)
	require.Equal(t, DeliveryDelivered, sale.DeliveryStatus)
	require.Equal(t, StatusDelivered, sale.Status)
	require.NotNil(t, sale.DeliveredAt)
}

func TestDeliveredSaleStaysDeliveredOnReturn(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quote, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Mbarara Builders Ltd",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 2}},
	}, 7)
	require.NoError(t, err)
	_, err = svc.ConvertToInvoice(ctx, quote.ID, 7)
	require.NoError(t, err)
	_, _, err = svc.RecordPayment(ctx, quote.ID, RecordPaymentRequest{Amount: 70, Method: MethodCash}, 9)
	require.NoError(t, err)

	sale, err := svc.UpdateDeliveryStatus(ctx, quote.ID, UpdateDeliveryRequest{DeliveryStatus: DeliveryDelivered}, 7)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, sale.Status)

	// Recording a return keeps the sale in its terminal state.
	sale, err = svc.UpdateDeliveryStatus(ctx, quote.ID, UpdateDeliveryRequest{DeliveryStatus: DeliveryReturned}, 7)
	require.NoError(t, err)
	require.Equal(t, DeliveryReturned, sale.DeliveryStatus)
	require.Equal(t, StatusDelivered, sale.Status)
}

func TestListExpiringQuotations(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateQuotation(ctx, CreateQuotationRequest{
		CustomerName: "Customer A",
		Items:        []SaleLineRequest{{HardwareID: 1, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	// Well inside the validity window: nothing to report.
	quotes, err := svc.ListExpiringQuotations(ctx, 72*time.Hour)
	require.NoError(t, err)
	require.Empty(t, quotes)

	svc.now = func() time.Time { return testClock.AddDate(0, 0, 29) }
	quotes, err = svc.ListExpiringQuotations(ctx, 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
}
