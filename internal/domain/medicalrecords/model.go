package medicalrecords

import "time"

// Record es la historia clínica de una cita completada.
// A lo sumo una por cita; solo la escribe el staff.
type Record struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	PetID         string    `json:"pet_id"`
	ClientID      string    `json:"client_id"`
	StaffID       string    `json:"staff_id"`
	Diagnosis     string    `json:"diagnosis"`
	Treatment     string    `json:"treatment"`
	Medication    string    `json:"medication"`
	FollowUp      string    `json:"follow_up"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
