package orders

import "context"

type Repository interface {
	// CreateWithItems corre en una sola transacción: inserta la orden y sus
	// líneas, descuenta stock por cada línea y, si clearCartUserID no es
	// vacío, vacía el carrito de ese usuario. Cualquier fallo revierte todo.
	CreateWithItems(ctx context.Context, o Order, items []OrderItem, clearCartUserID string) error

	GetByID(ctx context.Context, id string) (Order, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]OrderItem, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}
