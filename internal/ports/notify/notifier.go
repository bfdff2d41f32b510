package notify

import "context"

// Priority de una notificación (afecta orden/estilo en UI, no entrega).
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Message es el evento post-commit que emite un módulo de dominio.
// Payload es opcional (ids relacionados, etc) y se persiste como JSON.
type Message struct {
	Type     string
	Title    string
	Body     string
	Priority Priority
	Payload  map[string]any
}

// Notifier es el hook de fan-out que consumen los módulos CRUD.
// Ambos métodos son best-effort: nunca devuelven error porque un fallo
// al notificar no debe abortar la operación principal (queda en el log).
type Notifier interface {
	// Notify crea una notificación para un usuario concreto.
	// Si el usuario deshabilitó ese tipo en sus preferencias, es no-op.
	Notify(ctx context.Context, userID string, msg Message)

	// NotifyStaff replica el mensaje a todos los usuarios staff activos.
	NotifyStaff(ctx context.Context, msg Message)
}

// Nop descarta todo. Útil en tests de servicios que no miran notificaciones.
type Nop struct{}

func (Nop) Notify(context.Context, string, Message) {}
func (Nop) NotifyStaff(context.Context, Message)    {}
