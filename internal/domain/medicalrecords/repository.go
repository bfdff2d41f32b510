package medicalrecords

import "context"

type Repository interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	// GetByAppointment sostiene la regla "una historia por cita".
	GetByAppointment(ctx context.Context, appointmentID string) (Record, error)
	Update(ctx context.Context, rec Record) error
	ListByPet(ctx context.Context, petID string) ([]Record, error)
	ListByClient(ctx context.Context, clientID string) ([]Record, error)
}
