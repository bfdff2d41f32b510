package tokens

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purposes soportados. El purpose viaja en el claim para que un token
// de verificación no sirva para resetear password (y viceversa).
const (
	PurposeVerifyEmail   = "verify_email"
	PurposePasswordReset = "password_reset"
)

var (
	ErrNoSecret     = errors.New("tokens: secret not configured")
	ErrInvalidToken = errors.New("tokens: invalid or expired token")
)

// Maker firma y valida tokens HS256 de corta vida (verificación de email,
// reset de password). El secret viene de JWT_SECRET.
type Maker struct {
	secret []byte
	now    func() time.Time
}

func NewMaker(secret string) *Maker {
	return &Maker{
		secret: []byte(strings.TrimSpace(secret)),
		now:    time.Now,
	}
}

type claims struct {
	UserID  string `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (m *Maker) Generate(userID, purpose string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}

	now := m.now()
	c := &claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Parse valida firma, expiración y purpose; devuelve el user id.
func (m *Maker) Parse(token, purpose string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))

	if err != nil || !parsed.Valid || c.Purpose != purpose || c.UserID == "" {
		return "", ErrInvalidToken
	}
	return c.UserID, nil
}

// SetNow inyecta un reloj para tests de expiración.
func (m *Maker) SetNow(now func() time.Time) { m.now = now }
