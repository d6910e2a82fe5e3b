package entity

import "time"

// Roles de usuario. admin administra empresa y certificados, emisor puede
// emitir y enviar comprobantes, consulta solo lee.
const (
	RoleAdmin    = "admin"
	RoleEmisor   = "emisor"
	RoleConsulta = "consulta"
)

var validRoles = map[string]bool{
	RoleAdmin:    true,
	RoleEmisor:   true,
	RoleConsulta: true,
}

// IsValidRole indica si el rol es uno de los conocidos.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// User usuario del sistema, siempre dentro de una Company.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
