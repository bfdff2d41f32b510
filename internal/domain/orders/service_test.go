package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/cart"
	"vet-clinic-api/internal/ports/notify"
)

type fakeProduct struct {
	name   string
	price  float64
	stock  int
	active bool
}

type fakeProducts struct{ rows map[string]*fakeProduct }

func (f fakeProducts) Lookup(ctx context.Context, id string) (string, float64, int, bool, error) {
	p, ok := f.rows[id]
	if !ok {
		return "", 0, 0, false, errors.New("product not found")
	}
	return p.name, p.price, p.stock, p.active, nil
}

type fakeCarts struct{ items map[string][]cart.Item }

func (f fakeCarts) Items(ctx context.Context, userID string) ([]cart.Item, error) {
	return f.items[userID], nil
}

// fakeOrdersRepo imita la transacción: o entra todo o no entra nada.
type fakeOrdersRepo struct {
	orders  map[string]Order
	items   map[string][]OrderItem
	cleared []string
	failOn  string // product id que hace fallar el descuento de stock
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[string]Order{}, items: map[string][]OrderItem{}}
}

func (r *fakeOrdersRepo) CreateWithItems(ctx context.Context, o Order, items []OrderItem, clearCartUserID string) error {
	for _, it := range items {
		if it.ProductID == r.failOn {
			return errors.New("stock update affected no rows")
		}
	}
	r.orders[o.ID] = o
	r.items[o.ID] = items
	if clearCartUserID != "" {
		r.cleared = append(r.cleared, clearCartUserID)
	}
	return nil
}

func (r *fakeOrdersRepo) GetByID(ctx context.Context, id string) (Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *fakeOrdersRepo) ItemsByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	return r.items[orderID], nil
}

func (r *fakeOrdersRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *fakeOrdersRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	out := []Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrdersRepo) ListAll(ctx context.Context) ([]Order, error) {
	out := []Order{}
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

type captureNotifier struct {
	user  []notify.Message
	staff []notify.Message
}

func (c *captureNotifier) Notify(ctx context.Context, userID string, m notify.Message) {
	c.user = append(c.user, m)
}

func (c *captureNotifier) NotifyStaff(ctx context.Context, m notify.Message) {
	c.staff = append(c.staff, m)
}

func testProducts() fakeProducts {
	return fakeProducts{rows: map[string]*fakeProduct{
		"prod-1": {name: "Leash", price: 10, stock: 5, active: true},
		"prod-2": {name: "Bowl", price: 4.5, stock: 2, active: true},
		"prod-off": {name: "Old toy", price: 1, stock: 9, active: false},
	}}
}

func TestCheckout_FreezesPricesAndClearsCart(t *testing.T) {
	repo := newFakeOrdersRepo()
	n := &captureNotifier{}
	carts := fakeCarts{items: map[string][]cart.Item{
		"user-1": {
			{ID: "c1", UserID: "user-1", ProductID: "prod-1", Quantity: 2},
			{ID: "c2", UserID: "user-1", ProductID: "prod-2", Quantity: 1},
		},
	}}
	svc := NewService(repo, carts, testProducts(), n)
	svc.SetNow(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	o, err := svc.Checkout(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.Total != 24.5 {
		t.Fatalf("expected total 24.5, got %v", o.Total)
	}
	if len(o.Items) != 2 || o.Items[0].ProductName != "Leash" || o.Items[0].UnitPrice != 10 {
		t.Fatalf("expected denormalized items, got %+v", o.Items)
	}
	if len(repo.cleared) != 1 || repo.cleared[0] != "user-1" {
		t.Fatalf("expected cart cleared in the same transaction, got %v", repo.cleared)
	}
	if len(n.user) != 1 || n.user[0].Type != "order_placed" {
		t.Fatalf("expected order_placed for the client, got %+v", n.user)
	}
	if len(n.staff) != 1 {
		t.Fatalf("expected staff alert, got %d", len(n.staff))
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := NewService(newFakeOrdersRepo(), fakeCarts{items: map[string][]cart.Item{}}, testProducts(), nil)

	if _, err := svc.Checkout(context.Background(), "user-1"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_FailureLeavesNothingBehind(t *testing.T) {
	repo := newFakeOrdersRepo()
	repo.failOn = "prod-2" // la segunda línea rompe la transacción
	carts := fakeCarts{items: map[string][]cart.Item{
		"user-1": {
			{ID: "c1", UserID: "user-1", ProductID: "prod-1", Quantity: 1},
			{ID: "c2", UserID: "user-1", ProductID: "prod-2", Quantity: 1},
		},
	}}
	n := &captureNotifier{}
	svc := NewService(repo, carts, testProducts(), n)

	if _, err := svc.Checkout(context.Background(), "user-1"); err == nil {
		t.Fatal("expected checkout to fail")
	}
	if len(repo.orders) != 0 {
		t.Fatalf("expected no order rows after rollback, got %d", len(repo.orders))
	}
	if len(repo.cleared) != 0 {
		t.Fatal("cart must survive a failed checkout")
	}
	if len(n.user) != 0 || len(n.staff) != 0 {
		t.Fatal("no notifications on failed checkout")
	}
}

func TestBuyNow_StockAndAvailabilityChecks(t *testing.T) {
	svc := NewService(newFakeOrdersRepo(), fakeCarts{}, testProducts(), nil)

	if _, err := svc.BuyNow(context.Background(), "user-1", "prod-2", 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := svc.BuyNow(context.Background(), "user-1", "prod-off", 1); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}

	o, err := svc.BuyNow(context.Background(), "user-1", "prod-1", 1)
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	if o.Total != 10 || len(o.Items) != 1 {
		t.Fatalf("unexpected order: %+v", o)
	}
}

func TestUpdateStatus_NotifiesOwner(t *testing.T) {
	repo := newFakeOrdersRepo()
	n := &captureNotifier{}
	svc := NewService(repo, fakeCarts{}, testProducts(), n)

	o, err := svc.BuyNow(context.Background(), "user-1", "prod-1", 1)
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	n.user = nil

	upd, err := svc.UpdateStatus(context.Background(), o.ID, StatusShipped)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if upd.Status != StatusShipped {
		t.Fatalf("expected shipped, got %s", upd.Status)
	}
	if len(n.user) != 1 || n.user[0].Type != "order_status" {
		t.Fatalf("expected order_status notification, got %+v", n.user)
	}

	// estado inventado
	if _, err := svc.UpdateStatus(context.Background(), o.ID, Status("lost")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
