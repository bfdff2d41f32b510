package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/domain/cart"
	"vet-clinic-api/internal/ports/notify"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("order not found")
	ErrForbidden          = errors.New("not your order")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// CartSource expone lo que checkout necesita del carrito.
type CartSource interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
}

// ProductSource resuelve datos de producto para congelar las líneas.
type ProductSource interface {
	Lookup(ctx context.Context, id string) (name string, price float64, stock int, active bool, err error)
}

type Service struct {
	repo     Repository
	carts    CartSource
	products ProductSource
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(repo Repository, carts CartSource, products ProductSource, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		carts:    carts,
		products: products,
		notifier: notifier,
		now:      time.Now,
	}
}

type purchaseLine struct {
	productID string
	quantity  int
}

// Checkout compra todo el carrito y lo vacía dentro de la misma transacción.
func (s *Service) Checkout(ctx context.Context, userID string) (OrderWithItems, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return OrderWithItems{}, err
	}
	if len(items) == 0 {
		return OrderWithItems{}, ErrEmptyCart
	}

	lines := make([]purchaseLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, purchaseLine{productID: it.ProductID, quantity: it.Quantity})
	}
	return s.place(ctx, userID, lines, userID)
}

// BuyNow compra un solo producto sin pasar por el carrito.
func (s *Service) BuyNow(ctx context.Context, userID, productID string, qty int) (OrderWithItems, error) {
	if productID == "" || qty < 1 {
		return OrderWithItems{}, ErrInvalidInput
	}
	return s.place(ctx, userID, []purchaseLine{{productID: productID, quantity: qty}}, "")
}

// place arma la orden: chequeo de stock por lectura previa, luego la
// transacción inserta y descuenta. El chequeo no toma locks (solo da el
// error amable temprano); lo que de verdad impide el oversell es el
// descuento condicionado a stock >= n dentro de la transacción — si dos
// compras simultáneas pasan la lectura, una pierde en el UPDATE y se
// revierte entera.
func (s *Service) place(ctx context.Context, userID string, lines []purchaseLine, clearCartUserID string) (OrderWithItems, error) {
	now := s.now()
	o := Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	orderItems := make([]OrderItem, 0, len(lines))
	for _, ln := range lines {
		name, price, stock, active, err := s.products.Lookup(ctx, ln.productID)
		if err != nil || !active {
			return OrderWithItems{}, ErrProductUnavailable
		}
		if stock < ln.quantity {
			return OrderWithItems{}, ErrInsufficientStock
		}
		orderItems = append(orderItems, OrderItem{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   ln.productID,
			ProductName: name,
			UnitPrice:   price,
			Quantity:    ln.quantity,
		})
		o.Total += price * float64(ln.quantity)
	}

	if err := s.repo.CreateWithItems(ctx, o, orderItems, clearCartUserID); err != nil {
		return OrderWithItems{}, err
	}

	s.notifier.Notify(ctx, userID, notify.Message{
		Type:     "order_placed",
		Title:    "Order placed",
		Body:     fmt.Sprintf("Your order for %d item(s) was placed", len(orderItems)),
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"order_id": o.ID, "total": o.Total},
	})
	s.notifier.NotifyStaff(ctx, notify.Message{
		Type:     "order_placed",
		Title:    "New order",
		Body:     "A client placed a new order",
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"order_id": o.ID},
	})

	return OrderWithItems{Order: o, Items: orderItems}, nil
}

// UpdateStatus es la transición de staff; avisa al dueño de la orden.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (Order, error) {
	if !ValidStatus(to) {
		return Order{}, ErrInvalidInput
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.Status == StatusDelivered || o.Status == StatusCancelled {
		return Order{}, ErrInvalidInput
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return Order{}, err
	}
	o.Status = to
	o.UpdatedAt = s.now()

	s.notifier.Notify(ctx, o.UserID, notify.Message{
		Type:     "order_status",
		Title:    "Order update",
		Body:     fmt.Sprintf("Your order is now %s", to),
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"order_id": o.ID, "status": string(to)},
	})
	return o, nil
}

func (s *Service) Get(ctx context.Context, viewerID string, viewerIsStaff bool, id string) (OrderWithItems, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return OrderWithItems{}, err
	}
	if !viewerIsStaff && o.UserID != viewerID {
		return OrderWithItems{}, ErrForbidden
	}
	items, err := s.repo.ItemsByOrder(ctx, id)
	if err != nil {
		return OrderWithItems{}, err
	}
	return OrderWithItems{Order: o, Items: items}, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) SetNow(now func() time.Time) { s.now = now }
