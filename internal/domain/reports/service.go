package reports

import (
	"context"
	"errors"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/medicalrecords"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/users"
)

var (
	ErrNotFound  = errors.New("pet not found")
	ErrForbidden = errors.New("not allowed")
)

// Las fuentes son los services de cada módulo; interfaces locales para
// poder armar fakes en los tests sin levantar todo el grafo.
type PetSource interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	ListAll(ctx context.Context) ([]pets.Pet, error)
}

type AppointmentSource interface {
	ListByPet(ctx context.Context, petID string) ([]appointments.Appointment, error)
}

type RecordSource interface {
	ListByPet(ctx context.Context, petID string) ([]medicalrecords.Record, error)
}

type UserSource interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// PetReport es el join completo que consume la vista imprimible.
type PetReport struct {
	Pet          pets.Pet                     `json:"pet"`
	OwnerName    string                       `json:"owner_name"`
	OwnerEmail   string                       `json:"owner_email"`
	Appointments []appointments.Appointment   `json:"appointments"`
	Records      []medicalrecords.Record      `json:"medical_records"`
}

// PetListEntry es la fila del listado de staff.
type PetListEntry struct {
	Pet       pets.Pet `json:"pet"`
	OwnerName string   `json:"owner_name"`
}

type Service struct {
	pets         PetSource
	appointments AppointmentSource
	records      RecordSource
	users        UserSource
}

func NewService(pets PetSource, appointments AppointmentSource, records RecordSource, users UserSource) *Service {
	return &Service{
		pets:         pets,
		appointments: appointments,
		records:      records,
		users:        users,
	}
}

// PetReport arma el reporte de una mascota. Visible para el dueño o staff.
func (s *Service) PetReport(ctx context.Context, viewerID string, viewerIsStaff bool, petID string) (PetReport, error) {
	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return PetReport{}, ErrNotFound
	}
	if !viewerIsStaff && p.OwnerUserID != viewerID {
		return PetReport{}, ErrForbidden
	}

	rep := PetReport{Pet: p}
	if owner, err := s.users.GetByID(ctx, p.OwnerUserID); err == nil {
		rep.OwnerName = owner.Name
		rep.OwnerEmail = owner.Email
	}
	if appts, err := s.appointments.ListByPet(ctx, petID); err == nil {
		rep.Appointments = appts
	}
	if recs, err := s.records.ListByPet(ctx, petID); err == nil {
		rep.Records = recs
	}
	return rep, nil
}

// PetList es el listado de staff con el nombre del dueño resuelto.
func (s *Service) PetList(ctx context.Context) ([]PetListEntry, error) {
	all, err := s.pets.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// cache local para no releer el mismo dueño N veces
	names := map[string]string{}
	out := make([]PetListEntry, 0, len(all))
	for _, p := range all {
		name, ok := names[p.OwnerUserID]
		if !ok {
			if owner, err := s.users.GetByID(ctx, p.OwnerUserID); err == nil {
				name = owner.Name
			}
			names[p.OwnerUserID] = name
		}
		out = append(out, PetListEntry{Pet: p, OwnerName: name})
	}
	return out, nil
}
