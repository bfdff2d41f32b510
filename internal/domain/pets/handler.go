package pets

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones de mascotas en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("add_pet", addPetAction(svc))
	d.Register("get_pets", listPetsAction(svc))
	d.Register("get_pet", getPetAction(svc))
	d.RegisterMutation("update_pet", updatePetAction(svc))
	d.RegisterMutation("delete_pet", deletePetAction(svc))
}

type addPetRequest struct {
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed"`
	Sex       string  `json:"sex"`
	BirthDate string  `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg  float64 `json:"weight_kg"`
	Notes     string  `json:"notes"`
}

func addPetAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req addPetRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		birth, err := parseBirthDate(req.BirthDate)
		if err != nil {
			return dispatch.Fail("birth_date must be YYYY-MM-DD")
		}

		pet, err := svc.Create(r.HTTP.Context(), p.UserID, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			BirthDate: birth,
			WeightKg:  req.WeightKg,
			Notes:     req.Notes,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Pet added", "pet": pet})
	}
}

func listPetsAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var (
			list []Pet
			err  error
		)
		if p.IsStaff() {
			list, err = svc.ListAll(r.HTTP.Context())
		} else {
			list, err = svc.ListByOwner(r.HTTP.Context(), p.UserID)
		}
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(list)
	}
}

func getPetAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			PetID string `json:"pet_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.PetID == "" {
			return dispatch.Fail("pet_id is required")
		}

		pet, err := svc.Get(r.HTTP.Context(), p.UserID, p.IsStaff(), req.PetID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(pet)
	}
}

type updatePetRequest struct {
	PetID string `json:"pet_id"`

	// Punteros para PATCH real: nil = no tocar.
	Name      *string  `json:"name"`
	Species   *string  `json:"species"`
	Breed     *string  `json:"breed"`
	Sex       *string  `json:"sex"`
	BirthDate *string  `json:"birth_date"` // YYYY-MM-DD
	WeightKg  *float64 `json:"weight_kg"`
	Notes     *string  `json:"notes"`
}

func updatePetAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req updatePetRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.PetID == "" {
			return dispatch.Fail("pet_id is required")
		}

		in := UpdateInput{
			Name:     req.Name,
			Species:  req.Species,
			Breed:    req.Breed,
			Sex:      req.Sex,
			WeightKg: req.WeightKg,
			Notes:    req.Notes,
		}
		if req.BirthDate != nil {
			birth, err := parseBirthDate(*req.BirthDate)
			if err != nil {
				return dispatch.Fail("birth_date must be YYYY-MM-DD")
			}
			in.BirthDate = birth
		}

		pet, err := svc.Update(r.HTTP.Context(), p.UserID, p.IsStaff(), req.PetID, in)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Pet updated", "pet": pet})
	}
}

func deletePetAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			PetID string `json:"pet_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.PetID == "" {
			return dispatch.Fail("pet_id is required")
		}

		if err := svc.Delete(r.HTTP.Context(), p.UserID, p.IsStaff(), req.PetID); err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Pet removed"})
	}
}

func parseBirthDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Pet not found")
	case errors.Is(err, ErrForbidden):
		return dispatch.Fail("You can only manage your own pets")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid pet fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
