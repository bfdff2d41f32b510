package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinDurationMin = 1
	MaxDurationMin = 480
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("service not found")
)

// Catalog es el caso de uso sobre las prestaciones de la clínica.
type Catalog struct {
	repo Repository
	now  func() time.Time
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Description string
	DurationMin int
	Price       float64
}

func (c *Catalog) Create(ctx context.Context, in CreateInput) (Service, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Service{}, ErrInvalidInput
	}
	if in.DurationMin < MinDurationMin || in.DurationMin > MaxDurationMin {
		return Service{}, ErrInvalidInput
	}
	if in.Price < 0 {
		return Service{}, ErrInvalidInput
	}

	now := c.now()
	s := Service{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		DurationMin: in.DurationMin,
		Price:       in.Price,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.repo.Create(ctx, s); err != nil {
		return Service{}, err
	}
	return s, nil
}

type UpdateInput struct {
	Name        *string
	Description *string
	DurationMin *int
	Price       *float64
}

func (c *Catalog) Update(ctx context.Context, id string, in UpdateInput) (Service, error) {
	s, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return Service{}, err
	}
	if !s.Active {
		return Service{}, ErrNotFound
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Service{}, ErrInvalidInput
		}
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		s.Description = strings.TrimSpace(*in.Description)
	}
	if in.DurationMin != nil {
		if *in.DurationMin < MinDurationMin || *in.DurationMin > MaxDurationMin {
			return Service{}, ErrInvalidInput
		}
		s.DurationMin = *in.DurationMin
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return Service{}, ErrInvalidInput
		}
		s.Price = *in.Price
	}

	s.UpdatedAt = c.now()
	if err := c.repo.Update(ctx, s); err != nil {
		return Service{}, err
	}
	return s, nil
}

// Delete es borrado lógico.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	s, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.Active {
		return ErrNotFound
	}
	s.Active = false
	s.UpdatedAt = c.now()
	return c.repo.Update(ctx, s)
}

func (c *Catalog) ListActive(ctx context.Context) ([]Service, error) {
	return c.repo.ListActive(ctx)
}

func (c *Catalog) ListAll(ctx context.Context) ([]Service, error) {
	return c.repo.ListAll(ctx)
}

func (c *Catalog) GetByID(ctx context.Context, id string) (Service, error) {
	return c.repo.GetByID(ctx, id)
}

// ActiveService implementa la consulta que citas necesita sin importar el paquete.
func (c *Catalog) ActiveService(ctx context.Context, id string) (bool, error) {
	s, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.Active, nil
}

func (c *Catalog) SetNow(now func() time.Time) { c.now = now }
