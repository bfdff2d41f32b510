package auth

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("login", loginAction(svc))
	d.RegisterMutation("logout", logoutAction(svc))
	d.Register("check_session", checkSessionAction())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginAction(svc *Service) dispatch.HandlerFunc {
	return func(w http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		var req loginRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.Email == "" || req.Password == "" {
			return dispatch.Fail("Email and password are required")
		}

		sess, err := svc.Login(r.HTTP.Context(), req.Email, req.Password, clientIP(r.HTTP), r.HTTP.UserAgent())
		if err != nil {
			var locked *LockedError
			if errors.As(err, &locked) {
				return dispatch.Fail(fmt.Sprintf("Account locked due to repeated failed attempts. Try again in %d minutes.", locked.MinutesLeft()))
			}
			var bad *BadCredentialsError
			if errors.As(err, &bad) {
				return dispatch.Fail(fmt.Sprintf("Invalid email or password. %d attempts remaining.", bad.Remaining))
			}
			return dispatch.Fail("Login is temporarily unavailable")
		}

		middleware.SetSessionCookie(w, sess.Token)
		return dispatch.OK(map[string]any{
			"message": "Login successful",
			"user": map[string]any{
				"id":    sess.UserID,
				"name":  sess.Name,
				"email": sess.Email,
				"role":  sess.Role,
			},
		})
	}
}

func logoutAction(svc *Service) dispatch.HandlerFunc {
	return func(w http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		if p, ok := middleware.GetPrincipal(r.HTTP.Context()); ok {
			svc.Logout(p.Token)
		}
		middleware.ClearSessionCookie(w)
		return dispatch.OK(map[string]any{"message": "Logged out"})
	}
}

func checkSessionAction() dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.OK(map[string]any{"logged_in": false})
		}
		return dispatch.OK(map[string]any{
			"logged_in": true,
			"user": map[string]any{
				"id":    p.UserID,
				"name":  p.Name,
				"email": p.Email,
				"role":  p.Role,
			},
		})
	}
}

// clientIP: RemoteAddr sin puerto. El middleware RealIP de chi ya
// resolvió X-Forwarded-For si aplica.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
