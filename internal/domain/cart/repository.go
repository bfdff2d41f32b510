package cart

import "context"

type Repository interface {
	// Get devuelve la línea de ese usuario y producto, o ErrNotFound.
	Get(ctx context.Context, userID, productID string) (Item, error)
	Create(ctx context.Context, it Item) error
	Update(ctx context.Context, it Item) error
	Remove(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
	ListByUser(ctx context.Context, userID string) ([]Item, error)
}
