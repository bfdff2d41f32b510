package notifications

import (
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.Register("get_notifications", listAction(svc))
	d.Register("get_unread_count", unreadCountAction(svc))
	d.RegisterMutation("mark_notification_read", markReadAction(svc))
	d.RegisterMutation("mark_all_notifications_read", markAllReadAction(svc))
	d.RegisterMutation("delete_notification", deleteAction(svc))
	d.RegisterMutation("delete_all_notifications", deleteAllAction(svc))
	d.Register("get_notification_preferences", prefsAction(svc))
	d.RegisterMutation("update_notification_preferences", updatePrefsAction(svc))
}

func listAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		}
		_ = r.Bind(&req)
		// la acción también entra por GET (fallback de polling del cliente)
		if req.Limit == 0 {
			req.Limit = r.QueryInt("limit", 0)
		}
		if req.Offset == 0 {
			req.Offset = r.QueryInt("offset", 0)
		}

		list, err := svc.List(r.HTTP.Context(), p.UserID, req.Limit, req.Offset)
		if err != nil {
			return dispatch.Fail(err.Error())
		}
		return dispatch.OKData(list)
	}
}

func unreadCountAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		n, err := svc.UnreadCount(r.HTTP.Context(), p.UserID)
		if err != nil {
			return dispatch.Fail(err.Error())
		}
		return dispatch.OK(map[string]any{"count": n})
	}
}

type idRequest struct {
	ID int64 `json:"id"`
}

func markReadAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req idRequest
		if err := r.Bind(&req); err != nil || req.ID <= 0 {
			return dispatch.Fail("id is required")
		}

		if err := svc.MarkRead(r.HTTP.Context(), p.UserID, req.ID); err != nil {
			return dispatch.Fail("Notification not found")
		}
		return dispatch.OK(map[string]any{"message": "Marked as read"})
	}
}

func markAllReadAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if err := svc.MarkAllRead(r.HTTP.Context(), p.UserID); err != nil {
			return dispatch.Fail(err.Error())
		}
		return dispatch.OK(map[string]any{"message": "All marked as read"})
	}
}

func deleteAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req idRequest
		if err := r.Bind(&req); err != nil || req.ID <= 0 {
			return dispatch.Fail("id is required")
		}

		if err := svc.Delete(r.HTTP.Context(), p.UserID, req.ID); err != nil {
			return dispatch.Fail("Notification not found")
		}
		return dispatch.OK(map[string]any{"message": "Notification deleted"})
	}
}

func deleteAllAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if err := svc.DeleteAll(r.HTTP.Context(), p.UserID); err != nil {
			return dispatch.Fail(err.Error())
		}
		return dispatch.OK(map[string]any{"message": "Notifications cleared"})
	}
}

func prefsAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		prefs, err := svc.Preferences(r.HTTP.Context(), p.UserID)
		if err != nil {
			return dispatch.Fail(err.Error())
		}
		return dispatch.OKData(prefs)
	}
}

func updatePrefsAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			Preferences map[string]bool `json:"preferences"`
		}
		if err := r.Bind(&req); err != nil || len(req.Preferences) == 0 {
			return dispatch.Fail("preferences is required")
		}

		for ntype, enabled := range req.Preferences {
			if err := svc.SetPreference(r.HTTP.Context(), p.UserID, ntype, enabled); err != nil {
				return dispatch.Fail(err.Error())
			}
		}
		return dispatch.OK(map[string]any{"message": "Preferences updated"})
	}
}
