package middleware

import (
	"context"
	"net/http"
	"time"

	"vet-clinic-api/internal/session"
)

type ctxKey string

const principalKey ctxKey = "principal"

// CookieName del token de sesión. El cookie es de sesión (sin Max-Age);
// el timeout de 24h se aplica server-side en el store.
const CookieName = "vc_session"

// Principal es la identidad request-scoped que consumen los handlers.
// Se arma una vez por request desde el token validado; ningún módulo
// de dominio lee estado de sesión ambiente.
type Principal struct {
	UserID  string
	Role    string
	Name    string
	Email   string
	LoginAt time.Time
	Token   string
}

func (p Principal) IsStaff() bool  { return p.Role == "staff" }
func (p Principal) IsClient() bool { return p.Role == "client" }

// UserRefresher relee la fila de usuario para reflejar cambios de perfil
// y correcciones de rol entre login y request (lo implementa users.Service).
type UserRefresher interface {
	Refresh(ctx context.Context, userID string) (role, name, email string, active bool, err error)
}

// SessionContext resuelve el cookie -> sesión -> usuario fresco.
// Si la sesión expiró o el usuario fue desactivado, la destruye y el
// request sigue anónimo; cada handler decide si exige login.
func SessionContext(store *session.Store, users UserRefresher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := store.Get(c.Value)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			p := Principal{
				UserID:  sess.UserID,
				Role:    sess.Role,
				Name:    sess.Name,
				Email:   sess.Email,
				LoginAt: sess.LoginAt,
				Token:   sess.Token,
			}

			if users != nil {
				role, name, email, active, err := users.Refresh(r.Context(), sess.UserID)
				if err == nil {
					if !active {
						store.Destroy(sess.Token)
						next.ServeHTTP(w, r)
						return
					}
					p.Role, p.Name, p.Email = role, name, email
				}
				// si el store falla acá, seguimos con la foto del login
			}

			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPrincipal inyecta una identidad ya resuelta en el contexto; lo usa
// cualquier wiring que no pasa por SessionContext (y los tests).
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// SetSessionCookie escribe el cookie HTTP-only Lax. Sin Expires:
// el cutoff de 24h lo aplica el store al leer.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
