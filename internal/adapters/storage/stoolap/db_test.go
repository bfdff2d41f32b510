package stoolap

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/domain/cart"
	"vet-clinic-api/internal/domain/notifications"
	"vet-clinic-api/internal/domain/orders"
	"vet-clinic-api/internal/domain/products"
)

func TestOpen_CreatesSchemaIdempotently(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	// Segunda pasada sobre la misma base: no debe fallar ni duplicar nada.
	if err := ensureSchema(context.Background(), db); err != nil {
		t.Fatalf("re-ensure: %v", err)
	}

	repo := NewProductsRepo(db)
	if _, err := repo.ListAll(context.Background()); err != nil {
		t.Fatalf("list on fresh schema: %v", err)
	}
}

func TestProducts_SoftDeleteVisibility(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := NewProductsRepo(db)
	now := time.Now().UTC()

	for _, p := range []products.Product{
		{ID: "p1", Name: "Collar", Price: 9.9, Stock: 5, Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "p2", Name: "Correa", Price: 14.5, Stock: 2, Active: true, CreatedAt: now, UpdatedAt: now},
	} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}

	// Baja lógica de p2.
	p2, err := repo.GetByID(ctx, "p2")
	if err != nil {
		t.Fatalf("get p2: %v", err)
	}
	p2.Active = false
	p2.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, p2); err != nil {
		t.Fatalf("update p2: %v", err)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "p1" {
		t.Fatalf("active = %+v, quería solo p1", active)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d filas, quería 2", len(all))
	}

	// La fila sigue existiendo para las órdenes viejas.
	if _, err := repo.GetByID(ctx, "p2"); err != nil {
		t.Fatalf("get p2 tras la baja: %v", err)
	}

	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("get nope = %v, quería ErrNotFound", err)
	}
}

func TestOrders_CheckoutCommitsStockAndClearsCart(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	prods := NewProductsRepo(db)
	carts := NewCartRepo(db)
	ords := NewOrdersRepo(db)

	if err := prods.Create(ctx, products.Product{ID: "p1", Name: "Collar", Price: 9.9, Stock: 5, Active: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := carts.Create(ctx, cart.Item{ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 2, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	o := orders.Order{ID: "o1", UserID: "u1", Status: orders.StatusPending, Total: 19.8, CreatedAt: now, UpdatedAt: now}
	items := []orders.OrderItem{
		{ID: "oi1", OrderID: "o1", ProductID: "p1", ProductName: "Collar", UnitPrice: 9.9, Quantity: 2},
	}
	if err := ords.CreateWithItems(ctx, o, items, "u1"); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	got, err := ords.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Total != 19.8 || got.Status != orders.StatusPending {
		t.Fatalf("order = %+v", got)
	}

	lines, err := ords.ItemsByOrder(ctx, "o1")
	if err != nil || len(lines) != 1 || lines[0].ProductName != "Collar" {
		t.Fatalf("items = %+v (err %v)", lines, err)
	}

	p, err := prods.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Stock != 3 {
		t.Fatalf("stock = %d, quería 3", p.Stock)
	}

	left, err := carts.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("el carrito quedó con %d líneas", len(left))
	}
}

func TestOrders_CheckoutRollsBackOnFailure(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	prods := NewProductsRepo(db)
	carts := NewCartRepo(db)
	ords := NewOrdersRepo(db)

	if err := prods.Create(ctx, products.Product{ID: "p1", Name: "Collar", Price: 9.9, Stock: 5, Active: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := carts.Create(ctx, cart.Item{ID: "c1", UserID: "u1", ProductID: "p1", Quantity: 1, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	// La segunda línea apunta a un producto inexistente: el UPDATE de stock
	// no toca ninguna fila y la transacción entera debe revertirse.
	o := orders.Order{ID: "o1", UserID: "u1", Status: orders.StatusPending, Total: 99, CreatedAt: now, UpdatedAt: now}
	items := []orders.OrderItem{
		{ID: "oi1", OrderID: "o1", ProductID: "p1", ProductName: "Collar", UnitPrice: 9.9, Quantity: 1},
		{ID: "oi2", OrderID: "o1", ProductID: "ghost", ProductName: "Fantasma", UnitPrice: 1, Quantity: 1},
	}
	if err := ords.CreateWithItems(ctx, o, items, "u1"); err == nil {
		t.Fatal("checkout con producto inexistente no falló")
	}

	if _, err := ords.GetByID(ctx, "o1"); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("la orden quedó creada tras el rollback (err %v)", err)
	}
	p, err := prods.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Stock != 5 {
		t.Fatalf("stock = %d tras rollback, quería 5", p.Stock)
	}
	left, err := carts.ListByUser(ctx, "u1")
	if err != nil || len(left) != 1 {
		t.Fatalf("carrito tras rollback = %+v (err %v)", left, err)
	}
}

// Dos compras que pasaron ambas la lectura de stock (stock=1): la segunda
// debe perder en el descuento condicionado y revertirse entera, sin dejar
// el stock negativo.
func TestOrders_StockGuardStopsOversell(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	prods := NewProductsRepo(db)
	ords := NewOrdersRepo(db)

	if err := prods.Create(ctx, products.Product{ID: "p1", Name: "Leash", Price: 60, Stock: 1, Active: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	buy := func(orderID, itemID string) error {
		o := orders.Order{ID: orderID, UserID: "u-" + orderID, Status: orders.StatusPending, Total: 60, CreatedAt: now, UpdatedAt: now}
		items := []orders.OrderItem{
			{ID: itemID, OrderID: orderID, ProductID: "p1", ProductName: "Leash", UnitPrice: 60, Quantity: 1},
		}
		return ords.CreateWithItems(ctx, o, items, "")
	}

	if err := buy("o1", "oi1"); err != nil {
		t.Fatalf("primera compra: %v", err)
	}
	err = buy("o2", "oi2")
	if !errors.Is(err, orders.ErrInsufficientStock) {
		t.Fatalf("segunda compra: err = %v, quería ErrInsufficientStock", err)
	}

	p, err := prods.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Stock != 0 {
		t.Fatalf("stock = %d, quería 0 (nunca negativo)", p.Stock)
	}
	if _, err := ords.GetByID(ctx, "o2"); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("la orden perdedora quedó creada (err %v)", err)
	}
}

func TestNotifications_WatermarkSurvivesReopen(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	repo, err := NewNotificationsRepo(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	var last int64
	for i := 0; i < 3; i++ {
		id, err := repo.Create(ctx, notifications.Notification{
			UserID:    "u1",
			Type:      "welcome",
			Title:     "Hola",
			Message:   "bienvenido",
			Priority:  "normal",
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		if id <= last {
			t.Fatalf("id %d no es mayor que %d", id, last)
		}
		last = id
	}

	// Un repo nuevo sobre la misma base arranca desde MAX(id), no desde cero.
	repo2, err := NewNotificationsRepo(db)
	if err != nil {
		t.Fatalf("reseed repo: %v", err)
	}
	id, err := repo2.Create(ctx, notifications.Notification{
		UserID: "u1", Type: "welcome", Title: "otra", Message: "m", Priority: "normal", CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create tras reseed: %v", err)
	}
	if id <= last {
		t.Fatalf("id %d tras reseed, quería > %d", id, last)
	}

	after, err := repo.ListAfter(ctx, "u1", last, 10)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != 1 || after[0].ID != id {
		t.Fatalf("after = %+v, quería solo la #%d", after, id)
	}
}

func TestNotifications_PreferencesUpsert(t *testing.T) {
	db, err := Open("memory://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo, err := NewNotificationsRepo(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	if err := repo.SetPreference(ctx, "u1", "order_status", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Segunda escritura sobre la misma clave: update, no fila duplicada.
	if err := repo.SetPreference(ctx, "u1", "order_status", true); err != nil {
		t.Fatalf("re-set: %v", err)
	}

	prefs, err := repo.GetPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v, ok := prefs["order_status"]; !ok || !v {
		t.Fatalf("prefs = %+v, quería order_status=true", prefs)
	}
	if len(prefs) != 1 {
		t.Fatalf("prefs tiene %d filas, quería 1", len(prefs))
	}
}
