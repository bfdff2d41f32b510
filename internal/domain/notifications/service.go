package notifications

import (
	"context"
	"errors"
	"time"

	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/notify"
)

var ErrNotFound = errors.New("notification not found")

const defaultPageSize = 20

// StaffDirectory resuelve los destinatarios del fan-out a staff
// (lo implementa users.Service).
type StaffDirectory interface {
	ActiveStaffIDs(ctx context.Context) ([]string, error)
}

// Service es el dispatcher de notificaciones: único punto que escribe
// filas. Los módulos de dominio lo consumen vía el port notify.Notifier,
// así la dependencia queda one-way (dominio -> notificaciones).
type Service struct {
	repo  Repository
	staff StaffDirectory
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, staff StaffDirectory, log logger.Logger) *Service {
	return &Service{
		repo:  repo,
		staff: staff,
		log:   log,
		now:   time.Now,
	}
}

// Notify implementa notify.Notifier. Best-effort: todo error queda en el
// log operacional y no toca la operación que lo disparó.
func (s *Service) Notify(ctx context.Context, userID string, msg notify.Message) {
	if userID == "" || msg.Type == "" {
		return
	}

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		// si no podemos leer preferencias, entregamos igual
		s.log.Warn("preference read failed, delivering anyway", map[string]any{"user_id": userID, "err": err.Error()})
	} else if enabled, ok := prefs[msg.Type]; ok && !enabled {
		// el destinatario deshabilitó este tipo: no-op
		return
	}

	priority := string(msg.Priority)
	if priority == "" {
		priority = string(notify.PriorityNormal)
	}

	_, err = s.repo.Create(ctx, Notification{
		UserID:    userID,
		Type:      msg.Type,
		Title:     msg.Title,
		Message:   msg.Body,
		Priority:  priority,
		Payload:   msg.Payload,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.log.Error("notification write failed", map[string]any{"user_id": userID, "type": msg.Type, "err": err.Error()})
	}
}

// NotifyStaff replica el mensaje a cada staff activo.
func (s *Service) NotifyStaff(ctx context.Context, msg notify.Message) {
	ids, err := s.staff.ActiveStaffIDs(ctx)
	if err != nil {
		s.log.Error("staff fan-out failed", map[string]any{"type": msg.Type, "err": err.Error()})
		return
	}
	for _, id := range ids {
		s.Notify(ctx, id, msg)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) After(ctx context.Context, userID string, afterID int64, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	return s.repo.ListAfter(ctx, userID, afterID, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID string, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) DeleteAll(ctx context.Context, userID string) error {
	return s.repo.DeleteAll(ctx, userID)
}

// Preferences devuelve el mapa completo tipo->enabled (overrides
// mezclados sobre los defaults, todo habilitado salvo override).
func (s *Service) Preferences(ctx context.Context, userID string) (map[string]bool, error) {
	overrides, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		out[t] = true
	}
	for t, enabled := range overrides {
		out[t] = enabled
	}
	return out, nil
}

func (s *Service) SetPreference(ctx context.Context, userID, ntype string, enabled bool) error {
	if ntype == "" {
		return errors.New("notification type is required")
	}
	return s.repo.SetPreference(ctx, userID, ntype, enabled)
}

// SetNow inyecta un reloj para tests.
func (s *Service) SetNow(now func() time.Time) { s.now = now }
