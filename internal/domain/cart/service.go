package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("cart item not found")
	ErrProductUnavailable = errors.New("product not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// ProductSource resuelve datos del producto sin importar el paquete products.
type ProductSource interface {
	Lookup(ctx context.Context, id string) (name string, price float64, stock int, active bool, err error)
}

type Service struct {
	repo     Repository
	products ProductSource
	now      func() time.Time
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{
		repo:     repo,
		products: products,
		now:      time.Now,
	}
}

// Add suma cantidad sobre la línea existente si ya hay una para el producto.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (Item, error) {
	if productID == "" || qty < 1 {
		return Item{}, ErrInvalidInput
	}

	_, _, stock, active, err := s.products.Lookup(ctx, productID)
	if err != nil || !active {
		return Item{}, ErrProductUnavailable
	}

	now := s.now()
	existing, err := s.repo.Get(ctx, userID, productID)
	switch {
	case err == nil:
		existing.Quantity += qty
		if existing.Quantity > stock {
			return Item{}, ErrInsufficientStock
		}
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Item{}, err
		}
		return existing, nil
	case errors.Is(err, ErrNotFound):
		if qty > stock {
			return Item{}, ErrInsufficientStock
		}
		it := Item{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, it); err != nil {
			return Item{}, err
		}
		return it, nil
	default:
		return Item{}, err
	}
}

// SetQuantity fija la cantidad; 0 elimina la línea.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	if productID == "" || qty < 0 {
		return ErrInvalidInput
	}
	if qty == 0 {
		return s.repo.Remove(ctx, userID, productID)
	}

	_, _, stock, active, err := s.products.Lookup(ctx, productID)
	if err != nil || !active {
		return ErrProductUnavailable
	}
	if qty > stock {
		return ErrInsufficientStock
	}

	it, err := s.repo.Get(ctx, userID, productID)
	if err != nil {
		return err
	}
	it.Quantity = qty
	it.UpdatedAt = s.now()
	return s.repo.Update(ctx, it)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return ErrInvalidInput
	}
	return s.repo.Remove(ctx, userID, productID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

// List arma la vista enriquecida con nombre y precio vigentes.
func (s *Service) List(ctx context.Context, userID string) ([]Line, float64, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	lines := make([]Line, 0, len(items))
	total := 0.0
	for _, it := range items {
		name, price, _, _, err := s.products.Lookup(ctx, it.ProductID)
		if err != nil {
			// producto borrado del todo: la línea se muestra pelada
			lines = append(lines, Line{Item: it})
			continue
		}
		sub := price * float64(it.Quantity)
		lines = append(lines, Line{Item: it, ProductName: name, UnitPrice: price, Subtotal: sub})
		total += sub
	}
	return lines, total, nil
}

// Items devuelve las líneas crudas. Lo usa checkout.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) SetNow(now func() time.Time) { s.now = now }
