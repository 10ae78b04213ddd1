package procurement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brickline-erp/brickline-erp/internal/hardware"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

type memoryOrderRepo struct {
	orders  map[int64]*Order
	stock   map[int64]int
	nextID  int64
	lastSeq int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[int64]*Order), stock: make(map[int64]int)}
}

func (r *memoryOrderRepo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memoryOrderRepo) ListOrders(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range r.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memoryOrderRepo) CreateOrder(ctx context.Context, o Order) (int64, error) {
	r.nextID++
	r.lastSeq++
	cp := o
	cp.ID = r.nextID
	cp.OrderNumber = fmt.Sprintf("PO-%06d", r.lastSeq)
	cp.Status = StatusPending
	cp.PaymentStatus = PaymentUnpaid
	r.orders[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memoryOrderRepo) UpdateStatus(ctx context.Context, id int64, status string, deliveredAt *time.Time) error {
	o, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	o.DeliveredAt = deliveredAt
	if status == StatusDelivered {
		for _, it := range o.Items {
			r.stock[it.HardwareID] += it.Quantity
		}
	}
	return nil
}

func (r *memoryOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, paymentStatus string) error {
	o, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.PaymentStatus = paymentStatus
	return nil
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

func newTestService() (*Service, *memoryOrderRepo) {
	repo := newMemoryOrderRepo()
	catalog := &memoryCatalog{items: map[int64]hardware.Item{
		1: {ID: 1, Name: "Portland Cement 50kg", PricePerUnit: 32000},
		2: {ID: 2, Name: "Steel Rebar 12mm", PricePerUnit: 28000},
	}}
	return NewService(repo, catalog, nil), repo
}

func TestCreateOrderSnapshotsPricing(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Supplier: "Hima Cement",
		Items: []OrderItemRequest{
			{HardwareID: 1, Quantity: 100},
			{HardwareID: 2, Quantity: 10},
		},
	}, 3)
	require.NoError(t, err)

	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentUnpaid, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	require.InDelta(t, 32000.0, order.Items[0].UnitPrice, 0.001)
	require.InDelta(t, 3200000.0, order.Items[0].LineTotal, 0.001)
	require.InDelta(t, 3480000.0, order.TotalAmount, 0.001)
}

func TestCreateOrderUnknownItem(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Supplier: "Hima Cement",
		Items:    []OrderItemRequest{{HardwareID: 99, Quantity: 1}},
	}, 3)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStatusLifecycle(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Supplier: "Hima Cement",
		Items:    []OrderItemRequest{{HardwareID: 1, Quantity: 100}},
	}, 3)
	require.NoError(t, err)

	// Skipping straight to delivered is not allowed.
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusDelivered}, 3)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	for _, status := range []string{StatusApproved, StatusShipped} {
		order, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: status}, 3)
		require.NoError(t, err)
		require.Equal(t, status, order.Status)
		require.Equal(t, 0, repo.stock[1])
	}

	order, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusDelivered}, 3)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	// Delivery restocks the catalog.
	require.Equal(t, 100, repo.stock[1])

	// Delivered is terminal.
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusCancelled}, 3)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPaymentStatusOnCancelledOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Supplier: "Hima Cement",
		Items:    []OrderItemRequest{{HardwareID: 1, Quantity: 10}},
	}, 3)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusCancelled}, 3)
	require.NoError(t, err)

	_, err = svc.UpdatePaymentStatus(ctx, order.ID, UpdatePaymentStatusRequest{PaymentStatus: PaymentPaid}, 3)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPaymentStatusProgress(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Supplier: "Roofings Group",
		Items:    []OrderItemRequest{{HardwareID: 2, Quantity: 50}},
	}, 3)
	require.NoError(t, err)

	order, err = svc.UpdatePaymentStatus(ctx, order.ID, UpdatePaymentStatusRequest{PaymentStatus: PaymentPartiallyPaid}, 3)
	require.NoError(t, err)
	require.Equal(t, PaymentPartiallyPaid, order.PaymentStatus)

	order, err = svc.UpdatePaymentStatus(ctx, order.ID, UpdatePaymentStatusRequest{PaymentStatus: PaymentPaid}, 3)
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, order.PaymentStatus)
}
