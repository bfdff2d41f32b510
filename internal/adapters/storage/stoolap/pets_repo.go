package stoolap

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petCols = `
	id, owner_user_id, name, species, breed, sex,
	birth_date, weight_kg, notes, active,
	created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		p.ID, p.OwnerUserID, p.Name, p.Species, p.Breed, p.Sex,
		toNullTime(p.BirthDate), p.WeightKg, p.Notes, p.Active,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+petCols+`
		FROM pets
		WHERE id = ?
	`, id)

	p, err := scanPet(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = ?,
			species = ?,
			breed = ?,
			sex = ?,
			birth_date = ?,
			weight_kg = ?,
			notes = ?,
			active = ?,
			updated_at = ?
		WHERE id = ?
	`,
		p.Name, p.Species, p.Breed, p.Sex,
		toNullTime(p.BirthDate), p.WeightKg, p.Notes, p.Active, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petCols+`
		FROM pets
		WHERE owner_user_id = ? AND active = true
		ORDER BY created_at
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPets(rows)
}

func (r *PetsRepo) ListAll(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petCols+`
		FROM pets
		WHERE active = true
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPets(rows)
}

func scanPet(scan func(...any) error) (pets.Pet, error) {
	var (
		p  pets.Pet
		bd sql.NullTime
	)
	if err := scan(
		&p.ID, &p.OwnerUserID, &p.Name, &p.Species, &p.Breed, &p.Sex,
		&bd, &p.WeightKg, &p.Notes, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.BirthDate = fromNullTime(bd)
	return p, nil
}

func collectPets(rows *sql.Rows) ([]pets.Pet, error) {
	var out []pets.Pet
	for rows.Next() {
		p, err := scanPet(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
