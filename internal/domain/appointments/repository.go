package appointments

import "context"

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, error)
	Update(ctx context.Context, a Appointment) error
	ListByClient(ctx context.Context, clientID string) ([]Appointment, error)
	ListByPet(ctx context.Context, petID string) ([]Appointment, error)
	ListAll(ctx context.Context) ([]Appointment, error)
}
