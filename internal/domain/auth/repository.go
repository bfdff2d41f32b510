package auth

import (
	"context"
	"time"
)

// Repository persiste el log de intentos de login. El estado de lockout
// no se guarda aparte: se deriva de las filas con locked_until.
type Repository interface {
	// Record agrega una fila al log.
	Record(ctx context.Context, a Attempt) error

	// CountRecentFailures cuenta fallos del email desde `since`.
	// Las filas de lockout no cuentan como fallo.
	CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error)

	// ActiveLockout devuelve el vencimiento del lockout vigente, si existe
	// (una fila con locked_until en el futuro respecto de `now`).
	ActiveLockout(ctx context.Context, email string, now time.Time) (time.Time, bool, error)

	// ClearFailures borra los fallos acumulados del email.
	// No toca filas de lockout: un lockout nunca se levanta antes de tiempo.
	ClearFailures(ctx context.Context, email string) error
}
