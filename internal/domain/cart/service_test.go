package cart

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	items map[string]Item // key userID|productID
}

func newFakeRepo() *fakeRepo { return &fakeRepo{items: map[string]Item{}} }

func key(userID, productID string) string { return userID + "|" + productID }

func (r *fakeRepo) Get(_ context.Context, userID, productID string) (Item, error) {
	it, ok := r.items[key(userID, productID)]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

func (r *fakeRepo) Create(_ context.Context, it Item) error {
	r.items[key(it.UserID, it.ProductID)] = it
	return nil
}

func (r *fakeRepo) Update(_ context.Context, it Item) error {
	k := key(it.UserID, it.ProductID)
	if _, ok := r.items[k]; !ok {
		return ErrNotFound
	}
	r.items[k] = it
	return nil
}

func (r *fakeRepo) Remove(_ context.Context, userID, productID string) error {
	k := key(userID, productID)
	if _, ok := r.items[k]; !ok {
		return ErrNotFound
	}
	delete(r.items, k)
	return nil
}

func (r *fakeRepo) Clear(_ context.Context, userID string) error {
	for k, it := range r.items {
		if it.UserID == userID {
			delete(r.items, k)
		}
	}
	return nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]Item, error) {
	var out []Item
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeProducts struct {
	stock  map[string]int
	price  map[string]float64
	active map[string]bool
}

func (f fakeProducts) Lookup(_ context.Context, id string) (string, float64, int, bool, error) {
	stock, ok := f.stock[id]
	if !ok {
		return "", 0, 0, false, errors.New("no such product")
	}
	return "prod-" + id, f.price[id], stock, f.active[id], nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeProducts{
		stock:  map[string]int{"p1": 5, "p2": 1, "off": 9},
		price:  map[string]float64{"p1": 10, "p2": 3.5, "off": 1},
		active: map[string]bool{"p1": true, "p2": true, "off": false},
	})
	svc.SetNow(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	return svc, repo
}

func TestAdd_MergesOntoExistingLine(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	it, err := svc.Add(ctx, "u1", "p1", 1)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if it.Quantity != 3 {
		t.Fatalf("quantity = %d, quería 3 (misma línea)", it.Quantity)
	}
	if len(repo.items) != 1 {
		t.Fatalf("quedaron %d líneas, quería 1", len(repo.items))
	}
}

func TestAdd_CapsAtStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "p2", 2); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("add sobre stock = %v, quería ErrInsufficientStock", err)
	}

	// el merge también respeta el tope
	if _, err := svc.Add(ctx, "u1", "p1", 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "u1", "p1", 2); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("merge sobre stock = %v, quería ErrInsufficientStock", err)
	}
}

func TestAdd_RejectsInactiveProduct(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Add(context.Background(), "u1", "off", 1); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("add de producto dado de baja = %v", err)
	}
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.SetQuantity(ctx, "u1", "p1", 0); err != nil {
		t.Fatalf("set 0: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("la línea no se eliminó con cantidad 0")
	}
}

func TestList_EnrichesAndTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "u1", "p2", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines, total, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if total != 23.5 {
		t.Fatalf("total = %v, quería 23.5", total)
	}
	for _, l := range lines {
		if l.ProductName == "" || l.Subtotal == 0 {
			t.Fatalf("línea sin enriquecer: %+v", l)
		}
	}
}
