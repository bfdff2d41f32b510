package appointments

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones de citas en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("book_appointment", bookAction(svc))
	d.Register("get_appointments", listAction(svc))
	d.Register("get_appointment", getAction(svc))
	d.RegisterMutation("update_appointment", updateAction(svc))
	d.RegisterMutation("cancel_appointment", cancelAction(svc))
	d.RegisterMutation("request_cancellation", requestCancellationAction(svc))
	d.RegisterMutation("update_appointment_status", updateStatusAction(svc))
	d.RegisterMutation("assign_staff", assignStaffAction(svc))
}

type bookRequest struct {
	PetID     string `json:"pet_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
	Notes     string `json:"notes"`
}

func bookAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsClient() {
			return dispatch.Fail("Only clients can book appointments")
		}

		var req bookRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		at, err := parseSchedule(req.Date, req.Time)
		if err != nil {
			return dispatch.Fail("date must be YYYY-MM-DD and time HH:MM")
		}

		a, err := svc.Book(r.HTTP.Context(), p.UserID, BookInput{
			PetID:       req.PetID,
			ServiceID:   req.ServiceID,
			ScheduledAt: at,
			Notes:       req.Notes,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Appointment booked", "appointment": a})
	}
}

func listAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var (
			list []Appointment
			err  error
		)
		if p.IsStaff() {
			list, err = svc.ListAll(r.HTTP.Context())
		} else {
			list, err = svc.ListByClient(r.HTTP.Context(), p.UserID)
		}
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(list)
	}
}

func getAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			AppointmentID string `json:"appointment_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.AppointmentID == "" {
			return dispatch.Fail("appointment_id is required")
		}

		a, err := svc.Get(r.HTTP.Context(), p.UserID, p.IsStaff(), req.AppointmentID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(a)
	}
}

type updateRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	ServiceID     *string `json:"service_id"`
	Notes         *string `json:"notes"`
}

func updateAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req updateRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.AppointmentID == "" {
			return dispatch.Fail("appointment_id is required")
		}

		in := UpdateInput{ServiceID: req.ServiceID, Notes: req.Notes}
		if req.Date != nil || req.Time != nil {
			if req.Date == nil || req.Time == nil {
				return dispatch.Fail("date and time must be sent together")
			}
			at, err := parseSchedule(*req.Date, *req.Time)
			if err != nil {
				return dispatch.Fail("date must be YYYY-MM-DD and time HH:MM")
			}
			in.ScheduledAt = &at
		}

		a, err := svc.Update(r.HTTP.Context(), p.UserID, req.AppointmentID, in)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Appointment updated", "appointment": a})
	}
}

func cancelAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			AppointmentID string `json:"appointment_id"`
			Reason        string `json:"reason"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.AppointmentID == "" {
			return dispatch.Fail("appointment_id is required")
		}

		a, err := svc.Cancel(r.HTTP.Context(), p.UserID, req.AppointmentID, req.Reason)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Appointment cancelled", "appointment": a})
	}
}

func requestCancellationAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			AppointmentID string `json:"appointment_id"`
			Reason        string `json:"reason"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.AppointmentID == "" {
			return dispatch.Fail("appointment_id is required")
		}

		a, err := svc.RequestCancellation(r.HTTP.Context(), p.UserID, req.AppointmentID, req.Reason)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Cancellation requested", "appointment": a})
	}
}

func updateStatusAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can change appointment status")
		}

		var req struct {
			AppointmentID string `json:"appointment_id"`
			Status        string `json:"status"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.AppointmentID == "" || req.Status == "" {
			return dispatch.Fail("appointment_id and status are required")
		}

		a, err := svc.UpdateStatus(r.HTTP.Context(), req.AppointmentID, Status(strings.TrimSpace(req.Status)))
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Status updated", "appointment": a})
	}
}

func assignStaffAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can assign staff")
		}

		var req struct {
			AppointmentID string `json:"appointment_id"`
			StaffID       string `json:"staff_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.AppointmentID == "" || req.StaffID == "" {
			return dispatch.Fail("appointment_id and staff_id are required")
		}

		a, err := svc.AssignStaff(r.HTTP.Context(), req.AppointmentID, req.StaffID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Staff assigned", "appointment": a})
	}
}

func parseSchedule(date, hour string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(hour))
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Appointment not found")
	case errors.Is(err, ErrForbidden):
		return dispatch.Fail("You can only manage your own appointments")
	case errors.Is(err, ErrNotEditable):
		return dispatch.Fail("Appointment can no longer be modified")
	case errors.Is(err, ErrBadTransition):
		return dispatch.Fail("Invalid status transition")
	case errors.Is(err, ErrCancelAlreadyAsked):
		return dispatch.Fail("Cancellation already requested for this appointment")
	case errors.Is(err, ErrPetUnavailable):
		return dispatch.Fail("Pet not found or not yours")
	case errors.Is(err, ErrServiceUnavailable):
		return dispatch.Fail("Service is not available")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid appointment fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
