package reports

import (
	"errors"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga los reportes en el dispatcher. Son acciones GET:
// los parámetros viajan por query string.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.Register("get_pet_report", petReportAction(svc))
	d.Register("get_pet_list", petListAction(svc))
	d.Register("generate_pdf", generatePDFAction(svc))
}

// petID acepta el parámetro por body (POST) o query (GET).
func petID(r *dispatch.Request) string {
	var req struct {
		PetID string `json:"pet_id"`
	}
	_ = r.Bind(&req)
	if req.PetID != "" {
		return req.PetID
	}
	return r.Query("pet_id")
}

func petReportAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		id := petID(r)
		if id == "" {
			return dispatch.Fail("pet_id is required")
		}

		rep, err := svc.PetReport(r.HTTP.Context(), p.UserID, p.IsStaff(), id)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(rep)
	}
}

func petListAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can list all pets")
		}

		list, err := svc.PetList(r.HTTP.Context())
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(list)
	}
}

// generatePDFAction escribe HTML imprimible directo en la respuesta y
// devuelve nil para que el dispatcher no agregue el envelope JSON.
func generatePDFAction(svc *Service) dispatch.HandlerFunc {
	return func(w http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		id := petID(r)
		if id == "" {
			return dispatch.Fail("pet_id is required")
		}

		rep, err := svc.PetReport(r.HTTP.Context(), p.UserID, p.IsStaff(), id)
		if err != nil {
			return failFrom(err)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// si Execute falla a mitad de camino ya salió medio documento;
		// no hay envelope que devolver
		_ = reportTmpl.Execute(w, rep)
		return nil
	}
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Pet not found")
	case errors.Is(err, ErrForbidden):
		return dispatch.Fail("You can only view reports for your own pets")
	default:
		return dispatch.Fail(err.Error())
	}
}
