package users

import (
	"errors"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones de cuentas en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("register", registerAction(svc))
	d.RegisterMutation("create_staff", createStaffAction(svc))
	d.Register("get_profile", getProfileAction(svc))
	d.RegisterMutation("update_profile", updateProfileAction(svc))
	d.RegisterMutation("change_password", changePasswordAction(svc))
	d.RegisterMutation("request_password_reset", requestResetAction(svc))
	d.RegisterMutation("reset_password", resetPasswordAction(svc))
	d.RegisterMutation("verify_email", verifyEmailAction(svc))
	d.Register("get_clients", listByRoleAction(svc, RoleClient))
	d.Register("get_staff", listByRoleAction(svc, RoleStaff))
	d.RegisterMutation("deactivate_user", deactivateAction(svc))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		var req registerRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		u, verifyToken, err := svc.Register(r.HTTP.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			return failFrom(err)
		}

		out := dispatch.Result{"success": true, "message": "Account created", "user": u.Public()}
		if verifyToken != "" {
			// el transporte de mail está fuera de alcance: el token sale acá
			out["verify_token"] = verifyToken
		}
		return out
	}
}

func createStaffAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can create staff accounts")
		}

		var req registerRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		u, _, err := svc.Register(r.HTTP.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     RoleStaff,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Staff account created", "user": u.Public()})
	}
}

func getProfileAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		u, err := svc.GetByID(r.HTTP.Context(), p.UserID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(u.Public())
	}
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func updateProfileAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req updateProfileRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		u, err := svc.UpdateProfile(r.HTTP.Context(), p.UserID, UpdateProfileInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Profile updated", "user": u.Public()})
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func changePasswordAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req changePasswordRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		if err := svc.ChangePassword(r.HTTP.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
			if errors.Is(err, ErrWrongPassword) {
				return dispatch.Fail("Current password is incorrect")
			}
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Password changed"})
	}
}

func requestResetAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		var req struct {
			Email string `json:"email"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		// Respuesta uniforme exista o no la cuenta (no filtrar emails).
		out := dispatch.OK(map[string]any{"message": "If the email exists, a reset link was sent"})
		token, err := svc.RequestPasswordReset(r.HTTP.Context(), req.Email)
		if err == nil && token != "" {
			out["reset_token"] = token
		}
		return out
	}
}

func resetPasswordAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"new_password"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		if err := svc.ResetPassword(r.HTTP.Context(), req.Token, req.NewPassword); err != nil {
			return dispatch.Fail("Invalid or expired reset token")
		}
		return dispatch.OK(map[string]any{"message": "Password reset"})
	}
}

func verifyEmailAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		var req struct {
			Token string `json:"token"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		if err := svc.VerifyEmail(r.HTTP.Context(), req.Token); err != nil {
			return dispatch.Fail("Invalid or expired verification token")
		}
		return dispatch.OK(map[string]any{"message": "Email verified"})
	}
}

func listByRoleAction(svc *Service, role string) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can list users")
		}

		list, err := svc.ListByRole(r.HTTP.Context(), role, false)
		if err != nil {
			return failFrom(err)
		}

		out := make([]Public, 0, len(list))
		for _, u := range list {
			out = append(out, u.Public())
		}
		return dispatch.OKData(out)
	}
}

func deactivateAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can deactivate users")
		}

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.UserID == "" {
			return dispatch.Fail("user_id is required")
		}

		if err := svc.Deactivate(r.HTTP.Context(), req.UserID); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "User deactivated"})
	}
}

// failFrom mapea errores de servicio al mensaje del envelope.
// Cualquier error de store sale envuelto con la causa para diagnóstico.
func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("User not found")
	case errors.Is(err, ErrEmailTaken):
		return dispatch.Fail("An account with this email already exists")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
