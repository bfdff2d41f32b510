package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-clinic-api/internal/ports/notify"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("appointment not found")
	ErrForbidden          = errors.New("not your appointment")
	ErrNotEditable        = errors.New("appointment can no longer be modified")
	ErrBadTransition      = errors.New("status transition not allowed")
	ErrCancelAlreadyAsked = errors.New("cancellation already requested")
	ErrPetUnavailable     = errors.New("pet not available")
	ErrServiceUnavailable = errors.New("service not available")
)

// PetOwnership resuelve el dueño de una mascota activa.
// La implementa pets.Service; la interfaz local evita el ciclo de imports.
type PetOwnership interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

// ServiceCatalog dice si una prestación existe y está activa.
type ServiceCatalog interface {
	ActiveService(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo     Repository
	pets     PetOwnership
	catalog  ServiceCatalog
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(repo Repository, pets PetOwnership, catalog ServiceCatalog, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		pets:     pets,
		catalog:  catalog,
		notifier: notifier,
		now:      time.Now,
	}
}

type BookInput struct {
	PetID       string
	ServiceID   string
	ScheduledAt time.Time
	Notes       string
}

// Book crea una cita en pending para una mascota del cliente.
func (s *Service) Book(ctx context.Context, clientID string, in BookInput) (Appointment, error) {
	if in.PetID == "" || in.ServiceID == "" || in.ScheduledAt.IsZero() {
		return Appointment{}, ErrInvalidInput
	}
	now := s.now()
	if !in.ScheduledAt.After(now) {
		return Appointment{}, ErrInvalidInput
	}

	owner, err := s.pets.OwnerOf(ctx, in.PetID)
	if err != nil || owner != clientID {
		return Appointment{}, ErrPetUnavailable
	}
	active, err := s.catalog.ActiveService(ctx, in.ServiceID)
	if err != nil {
		return Appointment{}, err
	}
	if !active {
		return Appointment{}, ErrServiceUnavailable
	}

	a := Appointment{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		PetID:       in.PetID,
		ServiceID:   in.ServiceID,
		ScheduledAt: in.ScheduledAt,
		Status:      StatusPending,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.notifier.NotifyStaff(ctx, notify.Message{
		Type:     "appointment_booked",
		Title:    "New appointment request",
		Body:     fmt.Sprintf("A client booked an appointment for %s", a.ScheduledAt.Format("2006-01-02 15:04")),
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"appointment_id": a.ID},
	})
	return a, nil
}

type UpdateInput struct {
	ScheduledAt *time.Time
	ServiceID   *string
	Notes       *string
}

// Update deja al cliente reprogramar mientras la cita siga pending|confirmed.
func (s *Service) Update(ctx context.Context, clientID, id string, in UpdateInput) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.ClientID != clientID {
		return Appointment{}, ErrForbidden
	}
	if !a.Editable() {
		return Appointment{}, ErrNotEditable
	}

	if in.ScheduledAt != nil {
		if !in.ScheduledAt.After(s.now()) {
			return Appointment{}, ErrInvalidInput
		}
		a.ScheduledAt = *in.ScheduledAt
	}
	if in.ServiceID != nil {
		active, err := s.catalog.ActiveService(ctx, *in.ServiceID)
		if err != nil {
			return Appointment{}, err
		}
		if !active {
			return Appointment{}, ErrServiceUnavailable
		}
		a.ServiceID = *in.ServiceID
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

// Cancel es la cancelación directa del cliente (cita aún editable).
func (s *Service) Cancel(ctx context.Context, clientID, id, reason string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.ClientID != clientID {
		return Appointment{}, ErrForbidden
	}
	if !a.Editable() {
		return Appointment{}, ErrNotEditable
	}

	a.Status = StatusCancelled
	a.CancelReason = strings.TrimSpace(reason)
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.notifier.NotifyStaff(ctx, notify.Message{
		Type:     "appointment_status",
		Title:    "Appointment cancelled",
		Body:     "A client cancelled an appointment",
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"appointment_id": a.ID},
	})
	return a, nil
}

// RequestCancellation marca el pedido sin tocar el estado. No se pide dos veces.
func (s *Service) RequestCancellation(ctx context.Context, clientID, id, reason string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.ClientID != clientID {
		return Appointment{}, ErrForbidden
	}
	if !a.Editable() {
		return Appointment{}, ErrNotEditable
	}
	if a.CancelRequested {
		return Appointment{}, ErrCancelAlreadyAsked
	}

	a.CancelRequested = true
	a.CancelReason = strings.TrimSpace(reason)
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.notifier.NotifyStaff(ctx, notify.Message{
		Type:     "appointment_cancel_request",
		Title:    "Cancellation requested",
		Body:     "A client asked to cancel an appointment",
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"appointment_id": a.ID, "reason": a.CancelReason},
	})
	return a, nil
}

// UpdateStatus aplica una transición de staff y avisa al cliente.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !canTransition(a.Status, to) {
		return Appointment{}, ErrBadTransition
	}

	a.Status = to
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.notifier.Notify(ctx, a.ClientID, notify.Message{
		Type:     "appointment_status",
		Title:    "Appointment update",
		Body:     fmt.Sprintf("Your appointment is now %s", to),
		Priority: notify.PriorityNormal,
		Payload:  map[string]any{"appointment_id": a.ID, "status": string(to)},
	})
	return a, nil
}

// AssignStaff asigna (o reasigna) el veterinario a cargo.
func (s *Service) AssignStaff(ctx context.Context, id, staffID string) (Appointment, error) {
	if staffID == "" {
		return Appointment{}, ErrInvalidInput
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status == StatusCancelled || a.Status == StatusCompleted || a.Status == StatusNoShow {
		return Appointment{}, ErrNotEditable
	}

	a.StaffID = staffID
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, viewerID string, viewerIsStaff bool, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !viewerIsStaff && a.ClientID != viewerID {
		return Appointment{}, ErrForbidden
	}
	return a, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Appointment, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *Service) ListAll(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Appointment, error) {
	return s.repo.ListByPet(ctx, petID)
}

// Completed dice si la cita existe y ya terminó, y de quién es.
// Lo consume historias clínicas vía interfaz local.
func (s *Service) Completed(ctx context.Context, id string) (clientID, petID string, done bool, err error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", false, err
	}
	return a.ClientID, a.PetID, a.Status == StatusCompleted, nil
}

func (s *Service) SetNow(now func() time.Time) { s.now = now }
