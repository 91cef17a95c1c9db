package entity

import "time"

// Roles válidos para Admin.
const (
	RoleSuperAdmin = "superadmin"
	RoleReviewer   = "reviewer"
)

// Admin usuario del panel de revisión.
type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // superadmin, reviewer
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
