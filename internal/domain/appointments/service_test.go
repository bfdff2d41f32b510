package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic-api/internal/ports/notify"
)

type fakeRepo struct {
	rows map[string]Appointment
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[string]Appointment{}} }

func (r *fakeRepo) Create(ctx context.Context, a Appointment) error {
	r.rows[a.ID] = a
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.rows[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.rows[a.ID]; !ok {
		return ErrNotFound
	}
	r.rows[a.ID] = a
	return nil
}

func (r *fakeRepo) ListByClient(ctx context.Context, clientID string) ([]Appointment, error) {
	out := []Appointment{}
	for _, a := range r.rows {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByPet(ctx context.Context, petID string) ([]Appointment, error) {
	out := []Appointment{}
	for _, a := range r.rows {
		if a.PetID == petID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]Appointment, error) {
	out := []Appointment{}
	for _, a := range r.rows {
		out = append(out, a)
	}
	return out, nil
}

type fakePets struct{ owners map[string]string }

func (f fakePets) OwnerOf(ctx context.Context, petID string) (string, error) {
	o, ok := f.owners[petID]
	if !ok {
		return "", errors.New("pet not found")
	}
	return o, nil
}

type fakeCatalog struct{ active map[string]bool }

func (f fakeCatalog) ActiveService(ctx context.Context, id string) (bool, error) {
	return f.active[id], nil
}

type captureNotifier struct {
	user  []notify.Message
	staff []notify.Message
}

func (c *captureNotifier) Notify(ctx context.Context, userID string, m notify.Message) {
	c.user = append(c.user, m)
}

func (c *captureNotifier) NotifyStaff(ctx context.Context, m notify.Message) {
	c.staff = append(c.staff, m)
}

func newTestService(repo *fakeRepo, n notify.Notifier) *Service {
	svc := NewService(repo,
		fakePets{owners: map[string]string{"pet-1": "client-1"}},
		fakeCatalog{active: map[string]bool{"svc-1": true, "svc-off": false}},
		n,
	)
	svc.SetNow(func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) })
	return svc
}

func book(t *testing.T, svc *Service) Appointment {
	t.Helper()
	a, err := svc.Book(context.Background(), "client-1", BookInput{
		PetID:       "pet-1",
		ServiceID:   "svc-1",
		ScheduledAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return a
}

func TestBook_Validations(t *testing.T) {
	n := &captureNotifier{}
	svc := newTestService(newFakeRepo(), n)
	future := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	// mascota ajena
	_, err := svc.Book(context.Background(), "client-2", BookInput{PetID: "pet-1", ServiceID: "svc-1", ScheduledAt: future})
	if !errors.Is(err, ErrPetUnavailable) {
		t.Fatalf("expected ErrPetUnavailable, got %v", err)
	}

	// prestación dada de baja
	_, err = svc.Book(context.Background(), "client-1", BookInput{PetID: "pet-1", ServiceID: "svc-off", ScheduledAt: future})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}

	// fecha en el pasado
	past := time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC)
	_, err = svc.Book(context.Background(), "client-1", BookInput{PetID: "pet-1", ServiceID: "svc-1", ScheduledAt: past})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for past date, got %v", err)
	}

	a := book(t, svc)
	if a.Status != StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}
	if len(n.staff) != 1 || n.staff[0].Type != "appointment_booked" {
		t.Fatalf("expected one staff booking alert, got %+v", n.staff)
	}
}

func TestStatusTransitions(t *testing.T) {
	n := &captureNotifier{}
	svc := newTestService(newFakeRepo(), n)
	a := book(t, svc)

	// pending no puede saltar a completed
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusCompleted); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected ErrBadTransition, got %v", err)
	}

	for _, to := range []Status{StatusConfirmed, StatusInProgress, StatusCompleted} {
		if _, err := svc.UpdateStatus(context.Background(), a.ID, to); err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
	}

	// completed es terminal
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusCancelled); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("expected terminal state, got %v", err)
	}

	// cada transición avisó al cliente
	if len(n.user) != 3 {
		t.Fatalf("expected 3 client notifications, got %d", len(n.user))
	}
	for _, m := range n.user {
		if m.Type != "appointment_status" {
			t.Fatalf("unexpected notification type %q", m.Type)
		}
	}
}

func TestClientEdit_OnlyWhileEditable(t *testing.T) {
	svc := newTestService(newFakeRepo(), &captureNotifier{})
	a := book(t, svc)

	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// confirmed sigue siendo editable
	notes := "bring the vaccine card"
	if _, err := svc.Update(context.Background(), "client-1", a.ID, UpdateInput{Notes: &notes}); err != nil {
		t.Fatalf("update while confirmed: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Update(context.Background(), "client-1", a.ID, UpdateInput{Notes: &notes}); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable once in progress, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), "client-1", a.ID, "changed my mind"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable on late cancel, got %v", err)
	}
}

func TestRequestCancellation_NotTwice(t *testing.T) {
	n := &captureNotifier{}
	svc := newTestService(newFakeRepo(), n)
	a := book(t, svc)

	if _, err := svc.RequestCancellation(context.Background(), "client-1", a.ID, "conflict"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.RequestCancellation(context.Background(), "client-1", a.ID, "again"); !errors.Is(err, ErrCancelAlreadyAsked) {
		t.Fatalf("expected ErrCancelAlreadyAsked, got %v", err)
	}

	asked := 0
	for _, m := range n.staff {
		if m.Type == "appointment_cancel_request" {
			asked++
		}
	}
	if asked != 1 {
		t.Fatalf("expected exactly 1 cancel-request alert, got %d", asked)
	}
}

func TestCompleted_GatesMedicalHistory(t *testing.T) {
	svc := newTestService(newFakeRepo(), &captureNotifier{})
	a := book(t, svc)

	if _, _, done, _ := svc.Completed(context.Background(), a.ID); done {
		t.Fatal("pending appointment reported as completed")
	}

	for _, to := range []Status{StatusConfirmed, StatusInProgress, StatusCompleted} {
		if _, err := svc.UpdateStatus(context.Background(), a.ID, to); err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
	}

	clientID, petID, done, err := svc.Completed(context.Background(), a.ID)
	if err != nil || !done {
		t.Fatalf("completed appointment not reported as completed: %v", err)
	}
	if clientID != "client-1" || petID != "pet-1" {
		t.Fatalf("unexpected owner info: %s %s", clientID, petID)
	}
}
