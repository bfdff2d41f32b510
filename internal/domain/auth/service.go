package auth

import (
	"context"
	"fmt"
	"math"
	"time"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/notify"
	"vet-clinic-api/internal/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Constantes del throttling. Sin superficie de configuración: son parte
// del contrato de comportamiento.
const (
	MaxFailures     = 5
	FailureWindow   = 60 * time.Minute
	LockoutDuration = 15 * time.Minute
)

// LockedError: la cuenta está bloqueada hasta Until.
type LockedError struct {
	Until time.Time
	now   time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.MinutesLeft())
}

func (e *LockedError) MinutesLeft() int {
	mins := int(math.Ceil(e.Until.Sub(e.now).Minutes()))
	if mins < 1 {
		mins = 1
	}
	return mins
}

// BadCredentialsError: credenciales inválidas, con los intentos que quedan
// antes del lockout.
type BadCredentialsError struct {
	Remaining int
}

func (e *BadCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials, %d attempts remaining", e.Remaining)
}

// Service es el gate de sesión: valida credenciales, deriva el estado de
// lockout del log de intentos y abre sesiones server-side.
type Service struct {
	users    users.Repository
	attempts Repository
	sessions *session.Store
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(usersRepo users.Repository, attempts Repository, sessions *session.Store, notifier notify.Notifier, log logger.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		users:    usersRepo,
		attempts: attempts,
		sessions: sessions,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Login aplica el algoritmo completo de §login:
//  1. lockout vigente => rechazar (y loguear el intento como fallido)
//  2. verificar credenciales
//  3. éxito => log success + limpiar fallos + abrir sesión
//  4. fallo => log failure; si acumuló MaxFailures en la ventana,
//     insertar fila de lockout y alertar al staff.
//
// El registro de intentos es fail-open: si el log falla, el login sigue.
// El chequeo de lockout es fail-closed: si no se puede leer, se rechaza.
func (s *Service) Login(ctx context.Context, email, password, ip, userAgent string) (session.Session, error) {
	email = users.NormalizeEmail(email)
	now := s.now()

	until, locked, err := s.attempts.ActiveLockout(ctx, email, now)
	if err != nil {
		// fail-closed: sin lectura de lockout no hay login
		s.log.Error("lockout check failed", map[string]any{"email": email, "err": err.Error()})
		return session.Session{}, fmt.Errorf("login unavailable: %w", err)
	}
	if locked {
		s.record(ctx, email, ip, userAgent, false, nil)
		return session.Session{}, &LockedError{Until: until, now: now}
	}

	u, err := s.users.GetByEmail(ctx, email)
	ok := err == nil && u.Active &&
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil

	if ok {
		s.record(ctx, email, ip, userAgent, true, nil)
		if err := s.attempts.ClearFailures(ctx, email); err != nil {
			s.log.Warn("clear failures failed", map[string]any{"email": email, "err": err.Error()})
		}
		return s.sessions.Create(u.ID, u.Role, u.Name, u.Email), nil
	}

	s.record(ctx, email, ip, userAgent, false, nil)

	count, err := s.attempts.CountRecentFailures(ctx, email, now.Add(-FailureWindow))
	if err != nil {
		// sin conteo no podemos decidir el lockout: fail-closed, igual
		// que cuando falla la lectura del lockout
		s.log.Warn("failure count unavailable", map[string]any{"email": email, "err": err.Error()})
		return session.Session{}, fmt.Errorf("login unavailable: %w", err)
	}

	if count >= MaxFailures {
		lockUntil := now.Add(LockoutDuration)
		s.record(ctx, email, ip, userAgent, false, &lockUntil)

		s.notifier.NotifyStaff(ctx, notify.Message{
			Type:     "security_alert",
			Title:    "Account locked",
			Body:     fmt.Sprintf("Account %s was locked for %d minutes after %d failed login attempts.", email, int(LockoutDuration.Minutes()), MaxFailures),
			Priority: notify.PriorityHigh,
			Payload:  map[string]any{"email": email, "locked_until": lockUntil.UTC().Format(time.RFC3339)},
		})

		return session.Session{}, &LockedError{Until: lockUntil, now: now}
	}

	return session.Session{}, &BadCredentialsError{Remaining: MaxFailures - count}
}

// Logout destruye la sesión. Idempotente.
func (s *Service) Logout(token string) {
	s.sessions.Destroy(token)
}

// record es best-effort: un fallo al escribir el log jamás corta el flujo.
func (s *Service) record(ctx context.Context, email, ip, userAgent string, success bool, lockedUntil *time.Time) {
	a := Attempt{
		ID:          uuid.NewString(),
		Email:       email,
		IP:          ip,
		UserAgent:   userAgent,
		Success:     success,
		At:          s.now(),
		LockedUntil: lockedUntil,
	}
	if err := s.attempts.Record(ctx, a); err != nil {
		s.log.Warn("attempt log failed", map[string]any{"email": email, "err": err.Error()})
	}
}

// SetNow inyecta un reloj para tests del estado de lockout.
func (s *Service) SetNow(now func() time.Time) { s.now = now }
