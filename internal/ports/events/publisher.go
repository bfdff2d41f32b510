package events

import "context"

// Publisher publica eventos de dominio hacia afuera (broker, etc).
// Es un espejo best-effort: el dispatch lo invoca después de una acción
// mutante exitosa y nunca propaga el error al request.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Nop no publica nada (default cuando no hay broker configurado).
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
