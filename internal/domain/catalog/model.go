package catalog

import "time"

// Service es una prestación reservable de la clínica (consulta, vacuna, baño...).
// Borrado lógico: Active=false la saca del catálogo pero las citas viejas
// siguen apuntando a la fila.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration_min"`
	Price       float64   `json:"price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
