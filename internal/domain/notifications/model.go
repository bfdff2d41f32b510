package notifications

import "time"

// Notification es una fila del feed de un usuario. El ID es un entero
// estrictamente creciente asignado por el store: es el watermark que el
// cliente usa para pedir "solo lo nuevo".
type Notification struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  string         `json:"priority"`
	Payload   map[string]any `json:"payload,omitempty"`
	Read      bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// Tipos conocidos. La tabla de preferencias guarda solo overrides:
// un tipo sin fila está habilitado.
var KnownTypes = []string{
	"welcome",
	"security_alert",
	"appointment_booked",
	"appointment_status",
	"appointment_cancel_request",
	"medical_record_added",
	"order_placed",
	"order_status",
}
