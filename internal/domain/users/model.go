package users

import "time"

// Role del usuario. Gatea autorización de cada acción,
// independiente del estado de cualquier otra entidad.
const (
	RoleClient = "client"
	RoleStaff  = "staff"
)

// User representa una cuenta de la clínica (cliente o staff).
// Nunca se borra en duro: la desactivación apaga Active.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string

	Active        bool
	EmailVerified bool
	ImagePath     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public es la vista del usuario que sale por la API (sin hash).
type Public struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Active        bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	ImagePath     string    `json:"image_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u User) Public() Public {
	return Public{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		ImagePath:     u.ImagePath,
		CreatedAt:     u.CreatedAt,
	}
}
