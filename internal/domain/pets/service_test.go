package pets

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	rows map[string]Pet
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[string]Pet{}} }

func (r *fakeRepo) Create(ctx context.Context, p Pet) error {
	r.rows[p.ID] = p
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.rows[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.rows[p.ID]; !ok {
		return ErrNotFound
	}
	r.rows[p.ID] = p
	return nil
}

func (r *fakeRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	out := []Pet{}
	for _, p := range r.rows {
		if p.OwnerUserID == ownerUserID && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]Pet, error) {
	out := []Pet{}
	for _, p := range r.rows {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreate_Validates(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "", Species: "dog"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}

	_, err = svc.Create(context.Background(), "owner-1", CreateInput{Name: "Rex", Species: "dragon"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown species, got %v", err)
	}

	_, err = svc.Create(context.Background(), "owner-1", CreateInput{Name: "Rex", Species: "dog", WeightKg: -2})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative weight, got %v", err)
	}

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "  Rex ", Species: "dog", WeightKg: 12.5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Rex" || !p.Active || p.Sex != SexUnknown {
		t.Fatalf("unexpected pet: %+v", p)
	}
}

func TestDelete_IsSoft(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	svc.SetNow(func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) })

	p, err := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Michi", Species: "cat"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "owner-1", false, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// la fila sigue ahí, solo inactiva
	row, ok := repo.rows[p.ID]
	if !ok {
		t.Fatal("row was hard-deleted")
	}
	if row.Active {
		t.Fatal("expected Active=false after delete")
	}

	list, _ := svc.ListByOwner(context.Background(), "owner-1")
	if len(list) != 0 {
		t.Fatalf("expected inactive pet out of listings, got %d", len(list))
	}

	// segundo delete sobre la inactiva se reporta como no encontrada
	if err := svc.Delete(context.Background(), "owner-1", false, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestOwnership_Enforced(t *testing.T) {
	svc := NewService(newFakeRepo())

	p, _ := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Rex", Species: "dog"})

	if _, err := svc.Get(context.Background(), "owner-2", false, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "staff-1", true, p.ID); err != nil {
		t.Fatalf("staff should see any pet: %v", err)
	}

	name := "Firulais"
	if _, err := svc.Update(context.Background(), "owner-2", false, p.ID, UpdateInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on foreign update, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-2", false, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on foreign delete, got %v", err)
	}
}

func TestOwnerOf_SkipsInactive(t *testing.T) {
	svc := NewService(newFakeRepo())

	p, _ := svc.Create(context.Background(), "owner-1", CreateInput{Name: "Rex", Species: "dog"})

	owner, err := svc.OwnerOf(context.Background(), p.ID)
	if err != nil || owner != "owner-1" {
		t.Fatalf("ownerOf: %q %v", owner, err)
	}

	_ = svc.Delete(context.Background(), "owner-1", false, p.ID)
	if _, err := svc.OwnerOf(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive pet, got %v", err)
	}
}
