package appointments

import "time"

// Status es el estado de una cita.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

// transitions define qué cambios de estado puede aplicar el staff.
// completed, cancelled y no_show son terminales.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func canTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Appointment vincula cliente, mascota y prestación en una fecha.
// Nunca se borra: la cancelación es un cambio de estado.
type Appointment struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	PetID       string    `json:"pet_id"`
	ServiceID   string    `json:"service_id"`
	StaffID     string    `json:"staff_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes"`

	CancelRequested bool   `json:"cancel_requested"`
	CancelReason    string `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Editable dice si un cliente todavía puede tocar la cita.
func (a Appointment) Editable() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}
