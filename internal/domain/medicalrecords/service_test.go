package medicalrecords

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	rows map[string]Record
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[string]Record{}} }

func (r *fakeRepo) Create(ctx context.Context, rec Record) error {
	r.rows[rec.ID] = rec
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Record, error) {
	rec, ok := r.rows[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *fakeRepo) GetByAppointment(ctx context.Context, appointmentID string) (Record, error) {
	for _, rec := range r.rows {
		if rec.AppointmentID == appointmentID {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *fakeRepo) Update(ctx context.Context, rec Record) error {
	if _, ok := r.rows[rec.ID]; !ok {
		return ErrNotFound
	}
	r.rows[rec.ID] = rec
	return nil
}

func (r *fakeRepo) ListByPet(ctx context.Context, petID string) ([]Record, error) {
	out := []Record{}
	for _, rec := range r.rows {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByClient(ctx context.Context, clientID string) ([]Record, error) {
	out := []Record{}
	for _, rec := range r.rows {
		if rec.ClientID == clientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeAppointments struct {
	completed map[string]bool
}

func (f fakeAppointments) Completed(ctx context.Context, id string) (string, string, bool, error) {
	done, ok := f.completed[id]
	if !ok {
		return "", "", false, errors.New("appointment not found")
	}
	return "client-1", "pet-1", done, nil
}

func TestCreate_RequiresCompletedAppointment(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAppointments{completed: map[string]bool{
		"appt-pending": false,
		"appt-done":    true,
	}}, nil)

	_, err := svc.Create(context.Background(), "staff-1", CreateInput{
		AppointmentID: "appt-pending", Diagnosis: "otitis",
	})
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}

	rec, err := svc.Create(context.Background(), "staff-1", CreateInput{
		AppointmentID: "appt-done", Diagnosis: "otitis", Treatment: "drops",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ClientID != "client-1" || rec.PetID != "pet-1" || rec.StaffID != "staff-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestCreate_OnePerAppointment(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAppointments{completed: map[string]bool{"appt-done": true}}, nil)

	if _, err := svc.Create(context.Background(), "staff-1", CreateInput{
		AppointmentID: "appt-done", Diagnosis: "otitis",
	}); err != nil {
		t.Fatalf("first record: %v", err)
	}

	_, err := svc.Create(context.Background(), "staff-2", CreateInput{
		AppointmentID: "appt-done", Diagnosis: "second opinion",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGet_ClientVisibility(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeAppointments{completed: map[string]bool{"appt-done": true}}, nil)

	rec, err := svc.Create(context.Background(), "staff-1", CreateInput{
		AppointmentID: "appt-done", Diagnosis: "otitis",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "client-1", false, rec.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Get(context.Background(), "client-2", false, rec.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "staff-9", true, rec.ID); err != nil {
		t.Fatalf("staff read: %v", err)
	}
}
