package notifications

import "context"

type Repository interface {
	// Create inserta la fila y devuelve el id asignado (creciente).
	Create(ctx context.Context, n Notification) (int64, error)

	// ListByUser pagina el feed del usuario, más nuevo primero.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error)

	// ListAfter devuelve filas con id > afterID en orden ascendente
	// (camino de lectura del canal de push).
	ListAfter(ctx context.Context, userID string, afterID int64, limit int) ([]Notification, error)

	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, id int64) error
	DeleteAll(ctx context.Context, userID string) error

	// GetPreferences devuelve los overrides explícitos del usuario
	// (tipo -> enabled). Tipos ausentes se consideran habilitados.
	GetPreferences(ctx context.Context, userID string) (map[string]bool, error)
	SetPreference(ctx context.Context, userID, ntype string, enabled bool) error
}
