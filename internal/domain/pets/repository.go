package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	Update(ctx context.Context, p Pet) error
	// ListByOwner devuelve solo mascotas activas del dueño.
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	// ListAll devuelve todas las mascotas activas (uso de staff).
	ListAll(ctx context.Context) ([]Pet, error)
}
