package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/platform/tokens"
	"vet-clinic-api/internal/ports/notify"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrWrongPassword = errors.New("wrong password")
)

// Formato estándar, no RFC completo. El mismo patrón que usa el frontend.
var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

type Service struct {
	repo     Repository
	tokens   *tokens.Maker
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, tk *tokens.Maker, notifier notify.Notifier, log logger.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		tokens:   tk,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// SetNotifier engancha el fan-out después de construir el módulo de
// notificaciones: users y notifications se referencian mutuamente
// (welcome por un lado, directorio de staff por el otro).
func (s *Service) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // default client; staff solo lo crea otro staff
}

// Register da de alta la cuenta y devuelve el token de verificación de email.
// El transporte de mail queda fuera de alcance: el token se entrega al caller
// (en dev se loguea) y el endpoint verify_email lo consume.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)

	if name == "" || email == "" {
		return User{}, "", ErrInvalidInput
	}
	if !emailRx.MatchString(email) {
		return User{}, "", errors.New("invalid email format")
	}
	if err := validatePassword(in.Password); err != nil {
		return User{}, "", err
	}

	role := in.Role
	if role == "" {
		role = RoleClient
	}
	if role != RoleClient && role != RoleStaff {
		return User{}, "", ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, "", err
	}

	verifyToken := ""
	if s.tokens != nil {
		verifyToken, err = s.tokens.Generate(u.ID, tokens.PurposeVerifyEmail, verifyTokenTTL)
		if err != nil {
			// la cuenta ya existe; la verificación puede re-pedirse después
			s.log.Warn("verify token generation failed", logger.Err(err))
		}
	}

	s.notifier.Notify(ctx, u.ID, notify.Message{
		Type:     "welcome",
		Title:    "Welcome to the clinic",
		Body:     "Your account was created. Book your first appointment whenever you like.",
		Priority: notify.PriorityNormal,
	})

	return u, verifyToken, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

type UpdateProfileInput struct {
	Name  *string
	Email *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return User{}, ErrInvalidInput
		}
		u.Name = name
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		if !emailRx.MatchString(email) {
			return User{}, errors.New("invalid email format")
		}
		if email != u.Email {
			if _, err := s.repo.GetByEmail(ctx, email); err == nil {
				return User{}, ErrEmailTaken
			}
			u.Email = email
			u.EmailVerified = false
		}
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// RequestPasswordReset emite un token de reset de 1 hora. Para no filtrar
// qué emails existen, el caller responde igual exista o no la cuenta.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil || !u.Active {
		return "", ErrNotFound
	}
	if s.tokens == nil {
		return "", tokens.ErrNoSecret
	}
	return s.tokens.Generate(u.ID, tokens.PurposePasswordReset, resetTokenTTL)
}

func (s *Service) ResetPassword(ctx context.Context, token, next string) error {
	if s.tokens == nil {
		return tokens.ErrNoSecret
	}
	userID, err := s.tokens.Parse(token, tokens.PurposePasswordReset)
	if err != nil {
		return err
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if s.tokens == nil {
		return tokens.ErrNoSecret
	}
	userID, err := s.tokens.Parse(token, tokens.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return nil
	}
	u.EmailVerified = true
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func (s *Service) SetImagePath(ctx context.Context, userID, path string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.ImagePath = path
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func (s *Service) ListByRole(ctx context.Context, role string, activeOnly bool) ([]User, error) {
	return s.repo.ListByRole(ctx, role, activeOnly)
}

// ActiveStaffIDs alimenta el fan-out de notificaciones a staff.
func (s *Service) ActiveStaffIDs(ctx context.Context) ([]string, error) {
	staff, err := s.repo.ListByRole(ctx, RoleStaff, true)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(staff))
	for _, u := range staff {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// Deactivate apaga la cuenta (soft). Las filas históricas que la referencian
// (citas, órdenes) quedan intactas.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.Active = false
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// Refresh implementa middleware.UserRefresher: relee la fila para que la
// sesión refleje cambios de perfil/rol posteriores al login.
func (s *Service) Refresh(ctx context.Context, userID string) (role, name, email string, active bool, err error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", "", false, err
	}
	return u.Role, u.Name, u.Email, u.Active, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Mínimo 8 caracteres con al menos una letra y un número.
func validatePassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain letters and numbers")
	}
	return nil
}
