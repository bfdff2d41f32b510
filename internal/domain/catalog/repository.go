package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, s Service) error
	GetByID(ctx context.Context, id string) (Service, error)
	Update(ctx context.Context, s Service) error
	// ListActive devuelve solo prestaciones con Active=true.
	ListActive(ctx context.Context) ([]Service, error)
	ListAll(ctx context.Context) ([]Service, error)
}
