package medicalrecords

import (
	"errors"
	"net/http"

	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/middleware"
)

// RegisterActions cuelga las acciones de historia clínica en el dispatcher.
func RegisterActions(d *dispatch.Dispatcher, svc *Service) {
	d.RegisterMutation("add_medical_record", addRecordAction(svc))
	d.RegisterMutation("update_medical_record", updateRecordAction(svc))
	d.Register("get_medical_record", getRecordAction(svc))
	d.Register("get_medical_records", listRecordsAction(svc))
}

type addRecordRequest struct {
	AppointmentID string `json:"appointment_id"`
	Diagnosis     string `json:"diagnosis"`
	Treatment     string `json:"treatment"`
	Medication    string `json:"medication"`
	FollowUp      string `json:"follow_up"`
}

func addRecordAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can write medical records")
		}

		var req addRecordRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}

		rec, err := svc.Create(r.HTTP.Context(), p.UserID, CreateInput{
			AppointmentID: req.AppointmentID,
			Diagnosis:     req.Diagnosis,
			Treatment:     req.Treatment,
			Medication:    req.Medication,
			FollowUp:      req.FollowUp,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Medical record added", "record": rec})
	}
}

type updateRecordRequest struct {
	RecordID   string  `json:"record_id"`
	Diagnosis  *string `json:"diagnosis"`
	Treatment  *string `json:"treatment"`
	Medication *string `json:"medication"`
	FollowUp   *string `json:"follow_up"`
}

func updateRecordAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}
		if !p.IsStaff() {
			return dispatch.Fail("Only staff can write medical records")
		}

		var req updateRecordRequest
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.RecordID == "" {
			return dispatch.Fail("record_id is required")
		}

		rec, err := svc.Update(r.HTTP.Context(), req.RecordID, UpdateInput{
			Diagnosis:  req.Diagnosis,
			Treatment:  req.Treatment,
			Medication: req.Medication,
			FollowUp:   req.FollowUp,
		})
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OK(map[string]any{"message": "Medical record updated", "record": rec})
	}
}

func getRecordAction(svc *Service) dispatch.HandlerFunc {
	return func(_ http.ResponseWriter, r *dispatch.Request) dispatch.Result {
		p, ok := middleware.GetPrincipal(r.HTTP.Context())
		if !ok {
			return dispatch.Fail("Not logged in")
		}

		var req struct {
			RecordID string `json:"record_id"`
		}
		if err := r.Bind(&req); err != nil {
			return dispatch.Fail("Invalid JSON body")
		}
		if req.RecordID == "" {
			return dispatch.Fail("record_id is required")
		}

		rec, err := svc.Get(r.HTTP.Context(), p.UserID, p.IsStaff(), req.RecordID)
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(rec)
	}
}

func listRecordsAction(svc *Service) dispatch.HandlerFunc {
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

		var (
			recs []Record
			err  error
		)
		if req.PetID != "" {
			recs, err = svc.ListForPet(r.HTTP.Context(), p.UserID, p.IsStaff(), req.PetID)
		} else {
			recs, err = svc.ListByClient(r.HTTP.Context(), p.UserID)
		}
		if err != nil {
			return failFrom(err)
		}
		return dispatch.OKData(recs)
	}
}

func failFrom(err error) dispatch.Result {
	switch {
	case errors.Is(err, ErrNotFound):
		return dispatch.Fail("Medical record not found")
	case errors.Is(err, ErrForbidden):
		return dispatch.Fail("You can only view your own pet's records")
	case errors.Is(err, ErrNotCompleted):
		return dispatch.Fail("Appointment must be completed first")
	case errors.Is(err, ErrAlreadyExists):
		return dispatch.Fail("A medical record already exists for this appointment")
	case errors.Is(err, ErrInvalidInput):
		return dispatch.Fail("Missing or invalid record fields")
	default:
		return dispatch.Fail(err.Error())
	}
}
