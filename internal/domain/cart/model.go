package cart

import "time"

// Item es una línea del carrito. Única por (usuario, producto):
// agregar de nuevo suma cantidad en la misma fila.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Line es la vista enriquecida que se devuelve al cliente.
type Line struct {
	Item
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}
