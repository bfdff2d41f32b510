package medicalrecords

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/ports/notify"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("medical record not found")
	ErrForbidden     = errors.New("not allowed")
	ErrNotCompleted  = errors.New("appointment not completed")
	ErrAlreadyExists = errors.New("record already exists for appointment")
)

// AppointmentSource resuelve estado y dueño de una cita.
// La implementa appointments.Service; la interfaz local corta el ciclo.
type AppointmentSource interface {
	Completed(ctx context.Context, id string) (clientID, petID string, done bool, err error)
}

type Service struct {
	repo         Repository
	appointments AppointmentSource
	notifier     notify.Notifier
	now          func() time.Time
}

func NewService(repo Repository, appointments AppointmentSource, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:         repo,
		appointments: appointments,
		notifier:     notifier,
		now:          time.Now,
	}
}

type CreateInput struct {
	AppointmentID string
	Diagnosis     string
	Treatment     string
	Medication    string
	FollowUp      string
}

// Create exige cita completada, y a lo sumo un registro por cita.
func (s *Service) Create(ctx context.Context, staffID string, in CreateInput) (Record, error) {
	if in.AppointmentID == "" || strings.TrimSpace(in.Diagnosis) == "" {
		return Record{}, ErrInvalidInput
	}

	clientID, petID, done, err := s.appointments.Completed(ctx, in.AppointmentID)
	if err != nil {
		return Record{}, err
	}
	if !done {
		return Record{}, ErrNotCompleted
	}

	if _, err := s.repo.GetByAppointment(ctx, in.AppointmentID); err == nil {
		return Record{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	now := s.now()
	rec := Record{
		ID:            uuid.NewString(),
		AppointmentID: in.AppointmentID,
		PetID:         petID,
		ClientID:      clientID,
		StaffID:       staffID,
		Diagnosis:     strings.TrimSpace(in.Diagnosis),
		Treatment:     strings.TrimSpace(in.Treatment),
		Medication:    strings.TrimSpace(in.Medication),
		FollowUp:      strings.TrimSpace(in.FollowUp),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}

	s.notifier.Notify(ctx, clientID, notify.Message{
		Type:     "medical_record_added",
		Title:    "Medical record available",
		Body:     "A new medical record was added for your pet",
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"record_id": rec.ID, "pet_id": petID},
	})
	return rec, nil
}

type UpdateInput struct {
	Diagnosis  *string
	Treatment  *string
	Medication *string
	FollowUp   *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}

	if in.Diagnosis != nil {
		if strings.TrimSpace(*in.Diagnosis) == "" {
			return Record{}, ErrInvalidInput
		}
		rec.Diagnosis = strings.TrimSpace(*in.Diagnosis)
	}
	if in.Treatment != nil {
		rec.Treatment = strings.TrimSpace(*in.Treatment)
	}
	if in.Medication != nil {
		rec.Medication = strings.TrimSpace(*in.Medication)
	}
	if in.FollowUp != nil {
		rec.FollowUp = strings.TrimSpace(*in.FollowUp)
	}

	rec.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListForPet aplica visibilidad: el dueño ve las de su mascota, staff todas.
func (s *Service) ListForPet(ctx context.Context, viewerID string, viewerIsStaff bool, petID string) ([]Record, error) {
	recs, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if viewerIsStaff {
		return recs, nil
	}
	for _, r := range recs {
		if r.ClientID != viewerID {
			return nil, ErrForbidden
		}
	}
	return recs, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Record, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *Service) Get(ctx context.Context, viewerID string, viewerIsStaff bool, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !viewerIsStaff && rec.ClientID != viewerID {
		return Record{}, ErrForbidden
	}
	return rec, nil
}

// ListByPet lee sin chequear visibilidad. Lo usan los reportes.
func (s *Service) ListByPet(ctx context.Context, petID string) ([]Record, error) {
	return s.repo.ListByPet(ctx, petID)
}

func (s *Service) SetNow(now func() time.Time) { s.now = now }
