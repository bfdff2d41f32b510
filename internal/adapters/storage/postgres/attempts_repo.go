package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vet-clinic-api/internal/domain/auth"
)

// AttemptsRepo persiste el log append-only de intentos de login.
// Las filas de lockout son intentos con locked_until seteado.
type AttemptsRepo struct {
	db *sql.DB
}

func NewAttemptsRepo(db *sql.DB) *AttemptsRepo {
	return &AttemptsRepo{db: db}
}

func (r *AttemptsRepo) Record(ctx context.Context, a auth.Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts (id, email, ip, user_agent, success, attempted_at, locked_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		a.ID, a.Email, a.IP, a.UserAgent, a.Success, a.At, toNullTime(a.LockedUntil),
	)
	return err
}

// CountRecentFailures cuenta fallas dentro de la ventana. Las filas de
// lockout no cuentan como falla.
func (r *AttemptsRepo) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE email = $1
		  AND success = false
		  AND locked_until IS NULL
		  AND attempted_at >= $2
	`, email, since).Scan(&n)
	return n, err
}

// ActiveLockout devuelve el lockout vigente más lejano, si hay uno.
func (r *AttemptsRepo) ActiveLockout(ctx context.Context, email string, now time.Time) (time.Time, bool, error) {
	var until time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT locked_until
		FROM login_attempts
		WHERE email = $1
		  AND locked_until IS NOT NULL
		  AND locked_until > $2
		ORDER BY locked_until DESC
		LIMIT 1
	`, email, now).Scan(&until)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return until, true, nil
}

// ClearFailures borra solo filas de falla; nunca toca filas de lockout,
// así un login exitoso no levanta un lockout vigente antes de tiempo.
func (r *AttemptsRepo) ClearFailures(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM login_attempts
		WHERE email = $1
		  AND success = false
		  AND locked_until IS NULL
	`, email)
	return err
}
