package notifications

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/notify"
)

// -------------------------
// Fake repo (in-memory)
// -------------------------

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []Notification
	prefs  map[string]map[string]bool // userID -> type -> enabled
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{prefs: map[string]map[string]bool{}}
}

func (r *fakeRepo) Create(ctx context.Context, n Notification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	r.rows = append(r.rows, n)
	return n.ID, nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Notification{}
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) ListAfter(ctx context.Context, userID string, afterID int64, limit int) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Notification{}
	for _, n := range r.rows {
		if n.UserID == userID && n.ID > afterID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) MarkRead(ctx context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			r.rows[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) MarkAllRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID {
			r.rows[i].Read = true
		}
	}
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) DeleteAll(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, n := range r.rows {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeRepo) GetPreferences(ctx context.Context, userID string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for t, e := range r.prefs[userID] {
		out[t] = e
	}
	return out, nil
}

func (r *fakeRepo) SetPreference(ctx context.Context, userID, ntype string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prefs[userID] == nil {
		r.prefs[userID] = map[string]bool{}
	}
	r.prefs[userID][ntype] = enabled
	return nil
}

type fakeStaff struct{ ids []string }

func (f fakeStaff) ActiveStaffIDs(ctx context.Context) ([]string, error) { return f.ids, nil }

// -------------------------
// Tests
// -------------------------

func TestNotify_DisabledTypeIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{}, logger.Nop())

	if err := svc.SetPreference(context.Background(), "user-1", "order_status", false); err != nil {
		t.Fatalf("set preference: %v", err)
	}

	svc.Notify(context.Background(), "user-1", notify.Message{
		Type: "order_status", Title: "t", Body: "b",
	})

	list, _ := svc.List(context.Background(), "user-1", 10, 0)
	if len(list) != 0 {
		t.Fatalf("expected no rows for disabled type, got %d", len(list))
	}

	// otro tipo sigue habilitado y produce exactamente una fila sin leer
	svc.Notify(context.Background(), "user-1", notify.Message{
		Type: "appointment_status", Title: "t", Body: "b",
	})

	list, _ = svc.List(context.Background(), "user-1", 10, 0)
	if len(list) != 1 || list[0].Read {
		t.Fatalf("expected exactly 1 unread row, got %+v", list)
	}
	if n, _ := svc.UnreadCount(context.Background(), "user-1"); n != 1 {
		t.Fatalf("expected unread count 1, got %d", n)
	}
}

func TestNotify_IDsStrictlyIncreasing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{}, logger.Nop())

	for i := 0; i < 5; i++ {
		svc.Notify(context.Background(), "user-1", notify.Message{Type: "welcome", Title: "t", Body: "b"})
	}

	batch, err := svc.After(context.Background(), "user-1", 0, 10)
	if err != nil {
		t.Fatalf("after: %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i].ID <= batch[i-1].ID {
			t.Fatalf("ids not strictly increasing: %d then %d", batch[i-1].ID, batch[i].ID)
		}
	}

	// watermark: pedir después del tercero devuelve solo los dos últimos
	tail, _ := svc.After(context.Background(), "user-1", batch[2].ID, 10)
	if len(tail) != 2 {
		t.Fatalf("expected 2 rows after watermark, got %d", len(tail))
	}
}

func TestNotifyStaff_FanOut(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{ids: []string{"staff-1", "staff-2"}}, logger.Nop())

	// staff-2 silenció las alertas de seguridad
	_ = svc.SetPreference(context.Background(), "staff-2", "security_alert", false)

	svc.NotifyStaff(context.Background(), notify.Message{
		Type: "security_alert", Title: "Account locked", Body: "x", Priority: notify.PriorityHigh,
	})

	l1, _ := svc.List(context.Background(), "staff-1", 10, 0)
	l2, _ := svc.List(context.Background(), "staff-2", 10, 0)
	if len(l1) != 1 {
		t.Fatalf("expected staff-1 notified, got %d rows", len(l1))
	}
	if len(l2) != 0 {
		t.Fatalf("expected staff-2 muted, got %d rows", len(l2))
	}
}

func TestPreferences_DefaultsEnabled(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{}, logger.Nop())

	_ = svc.SetPreference(context.Background(), "user-1", "order_status", false)

	prefs, err := svc.Preferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs["order_status"] {
		t.Fatal("expected order_status disabled")
	}
	if !prefs["appointment_booked"] {
		t.Fatal("expected unset types to default to enabled")
	}
}

func TestList_NewestFirstPaginated(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{}, logger.Nop())
	svc.SetNow(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	for i := 0; i < 7; i++ {
		svc.Notify(context.Background(), "user-1", notify.Message{Type: "welcome", Title: "t", Body: "b"})
	}

	page1, _ := svc.List(context.Background(), "user-1", 5, 0)
	page2, _ := svc.List(context.Background(), "user-1", 5, 5)
	if len(page1) != 5 || len(page2) != 2 {
		t.Fatalf("expected 5+2, got %d+%d", len(page1), len(page2))
	}
	if page1[0].ID <= page1[1].ID {
		t.Fatal("expected newest first")
	}
}
