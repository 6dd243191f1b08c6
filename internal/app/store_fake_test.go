package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/slmbngl/order-management-api/internal/domain"
	"github.com/slmbngl/order-management-api/internal/events"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. WithTx
// snapshots state and restores it when fn fails, so rollback behavior is
// observable in tests.
type fakeStore struct {
	customers map[int64]domain.Customer
	products  map[int64]domain.Product
	orders    map[int64]domain.Order

	nextOrderID int64
	nextItemID  int64

	failInsertOrder  bool
	failUpdateStatus bool
}

var errStorageDown = errors.New("storage failure")

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[int64]domain.Customer),
		products:  make(map[int64]domain.Product),
		orders:    make(map[int64]domain.Order),
	}
}

func (f *fakeStore) addCustomer(c domain.Customer) {
	f.customers[c.ID] = c
}

func (f *fakeStore) addProduct(p domain.Product) {
	f.products[p.ID] = p
}

func (f *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	for id, c := range f.customers {
		cp.customers[id] = c
	}
	for id, p := range f.products {
		cp.products[id] = p
	}
	for id, o := range f.orders {
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		cp.orders[id] = o
	}
	cp.nextOrderID = f.nextOrderID
	cp.nextItemID = f.nextItemID
	return cp
}

func (f *fakeStore) restore(snap *fakeStore) {
	f.customers = snap.customers
	f.products = snap.products
	f.orders = snap.orders
	f.nextOrderID = snap.nextOrderID
	f.nextItemID = snap.nextItemID
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.snapshot()
	if err := fn(ctx); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) GetCustomer(_ context.Context, id int64) (domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return domain.Customer{}, fmt.Errorf("%w: id %d", domain.ErrCustomerNotFound, id)
	}
	return c, nil
}

func (f *fakeStore) GetCustomerByUserID(_ context.Context, userID string) (domain.Customer, error) {
	for _, c := range f.customers {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

func (f *fakeStore) GetProductsForUpdate(_ context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProductForUpdate(_ context.Context, id int64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (f *fakeStore) UpdateProductStock(_ context.Context, id int64, stock int) error {
	p, ok := f.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.StockQuantity = stock
	f.products[id] = p
	return nil
}

func (f *fakeStore) InsertOrder(_ context.Context, order *domain.Order) error {
	if f.failInsertOrder {
		return errStorageDown
	}
	f.nextOrderID++
	order.ID = f.nextOrderID
	for i := range order.Items {
		f.nextItemID++
		order.Items[i].ID = f.nextItemID
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	f.orders[order.ID] = stored
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, id)
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o, nil
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	return f.GetOrder(ctx, id)
}

func (f *fakeStore) ListOrders(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStore) ListOrdersByCustomer(_ context.Context, customerID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOrderItems(_ context.Context, orderID int64) ([]domain.OrderItem, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, nil
	}
	return append([]domain.OrderItem(nil), o.Items...), nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	if f.failUpdateStatus {
		return errStorageDown
	}
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	f.orders[id] = o
	return nil
}

func (f *fakeStore) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := f.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

// capturePublisher records published events in order.
type capturePublisher struct {
	events []events.OrderEvent
}

func (c *capturePublisher) Publish(_ context.Context, evt events.OrderEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func (c *capturePublisher) kinds() []events.Kind {
	out := make([]events.Kind, 0, len(c.events))
	for _, evt := range c.events {
		out = append(out, evt.Kind)
	}
	return out
}
