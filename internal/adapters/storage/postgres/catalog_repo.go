package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/catalog"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

const serviceCols = `id, name, description, duration_min, price, active, created_at, updated_at`

func (r *CatalogRepo) Create(ctx context.Context, s catalog.Service) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		s.ID, s.Name, s.Description, s.DurationMin, s.Price, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *CatalogRepo) GetByID(ctx context.Context, id string) (catalog.Service, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+serviceCols+`
		FROM services
		WHERE id = $1
	`, id)

	var s catalog.Service
	if err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.DurationMin, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Service{}, catalog.ErrNotFound
		}
		return catalog.Service{}, err
	}
	return s, nil
}

func (r *CatalogRepo) Update(ctx context.Context, s catalog.Service) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE services
		SET
			name = $2,
			description = $3,
			duration_min = $4,
			price = $5,
			active = $6,
			updated_at = $7
		WHERE id = $1
	`,
		s.ID, s.Name, s.Description, s.DurationMin, s.Price, s.Active, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *CatalogRepo) ListActive(ctx context.Context) ([]catalog.Service, error) {
	return r.list(ctx, true)
}

func (r *CatalogRepo) ListAll(ctx context.Context) ([]catalog.Service, error) {
	return r.list(ctx, false)
}

func (r *CatalogRepo) list(ctx context.Context, activeOnly bool) ([]catalog.Service, error) {
	q := `SELECT ` + serviceCols + ` FROM services`
	if activeOnly {
		q += ` WHERE active = true`
	}
	q += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Service
	for rows.Next() {
		var s catalog.Service
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.DurationMin, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
