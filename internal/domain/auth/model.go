package auth

import "time"

// Attempt es una fila del log append-only de intentos de login.
// LockedUntil != nil marca la fila que abre un lockout temporal.
type Attempt struct {
	ID          string
	Email       string
	IP          string
	UserAgent   string
	Success     bool
	At          time.Time
	LockedUntil *time.Time
}
