package stoolap

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userCols = `
	id, name, email, password_hash, role,
	active, email_verified, image_path,
	created_at, updated_at
`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.Active, u.EmailVerified, u.ImagePath,
		u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			name = ?,
			email = ?,
			password_hash = ?,
			role = ?,
			active = ?,
			email_verified = ?,
			image_path = ?,
			updated_at = ?
		WHERE id = ?
	`,
		u.Name, u.Email, u.PasswordHash, u.Role,
		u.Active, u.EmailVerified, u.ImagePath, u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role string, activeOnly bool) ([]users.User, error) {
	q := `
		SELECT ` + userCols + `
		FROM users
		WHERE role = ?
	`
	if activeOnly {
		q += ` AND active = true`
	}
	q += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []users.User
	for rows.Next() {
		var u users.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.Active, &u.EmailVerified, &u.ImagePath,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row *sql.Row) (users.User, error) {
	var u users.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Active, &u.EmailVerified, &u.ImagePath,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}
