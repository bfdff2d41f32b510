package catalog

import (
	"errors"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones del catálogo en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, c *Catalog) {
	d.RegisterMutation("add_service", addServiceAction(c))
	d.Register("get_services", listServicesAction(c))
	d.RegisterMutation("update_service", updateServiceAction(c))
	d.RegisterMutation("delete_service", deleteServiceAction(c))
}

type addServiceRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
}

func addServiceAction(c *Catalog) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can manage services")
		}

		var req addServiceRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		s, err := c.Create(r.HTTP.Context(), CreateInput{
			Name:        req.Name,
			Description: req.Description,
			DurationMin: req.DurationMin,
			Price:       req.Price,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Service added", "service": s})
	}
}

func listServicesAction(c *Catalog) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		// staff ve también las dadas de baja
		var (
			list []Service
			err  error
		)
		if p.IsStaff() {
			list, err = c.ListAll(r.HTTP.Context())
		} else {
			list, err = c.ListActive(r.HTTP.Context())
		}
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(list)
	}
}

type updateServiceRequest struct {
	ServiceID   string   `json:"service_id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	DurationMin *int     `json:"duration_min"`
	Price       *float64 `json:"price"`
}

func updateServiceAction(c *Catalog) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can manage services")
		}

		var req updateServiceRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.ServiceID == "" {
			return dispatch.Fail("service_id is required")
		}

		s, err := c.Update(r.HTTP.Context(), req.ServiceID, UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			DurationMin: req.DurationMin,
			Price:       req.Price,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Service updated", "service": s})
	}
}

func deleteServiceAction(c *Catalog) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can manage services")
		}

		var req struct {
			ServiceID string `json:"service_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.ServiceID == "" {
			return dispatch.Fail("service_id is required")
		}

		if err := c.Delete(r.HTTP.Context(), req.ServiceID); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Service removed"})
	}
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Service not found")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Duration must be between 1 and 480 minutes and fields must be valid")
	default:
		return dispatch.Fail(err.Error())
	}
}
