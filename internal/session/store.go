package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AbsoluteTTL es el timeout absoluto de sesión, medido desde el login.
// Se chequea en cada lectura (no hay sweep activo), igual que el lockout.
const AbsoluteTTL = 24 * time.Hour

// Session es el estado server-side asociado al cookie del cliente.
// Role/Name/Email son una foto del login; el middleware los refresca
// contra la fila de usuario en cada request.
type Session struct {
	Token   string
	UserID  string
	Role    string
	Name    string
	Email   string
	LoginAt time.Time
}

// Store guarda sesiones en memoria, keyed por token opaco (uuid).
// El proceso es single-instance; si algún día hay varias réplicas,
// esto pasa a una tabla o a un store compartido.
type Store struct {
	mu      sync.RWMutex
	byToken map[string]Session
	ttl     time.Duration
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		byToken: map[string]Session{},
		ttl:     AbsoluteTTL,
		now:     time.Now,
	}
}

// Create abre una sesión nueva y devuelve el token a setear en el cookie.
func (s *Store) Create(userID, role, name, email string) Session {
	sess := Session{
		Token:   uuid.NewString(),
		UserID:  userID,
		Role:    role,
		Name:    name,
		Email:   email,
		LoginAt: s.now(),
	}

	s.mu.Lock()
	s.byToken[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Get valida presencia y timeout absoluto. Si la sesión expiró,
// la destruye y reporta not-found.
func (s *Store) Get(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	s.mu.RLock()
	sess, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}

	if s.now().Sub(sess.LoginAt) > s.ttl {
		s.Destroy(token)
		return Session{}, false
	}

	return sess, true
}

func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}

// DestroyUser cierra todas las sesiones de un usuario (desactivación de cuenta).
func (s *Store) DestroyUser(userID string) {
	s.mu.Lock()
	for tok, sess := range s.byToken {
		if sess.UserID == userID {
			delete(s.byToken, tok)
		}
	}
	s.mu.Unlock()
}

// SetNow inyecta un reloj para tests.
func (s *Store) SetNow(now func() time.Time) { s.now = now }
