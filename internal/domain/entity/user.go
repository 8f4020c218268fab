package entity

import "time"

// Roles válidos para User.
const (
	RoleMember      = "member"
	RoleTenantAdmin = "tenant_admin"
)

// User representa un usuario del sistema (pertenece a exactamente un Tenant).
type User struct {
	ID           string
	TenantID     string // fijo desde la creación, nunca se reasigna
	FullName     string
	Email        string // único dentro del tenant, normalizado
	PasswordHash string // bcrypt, nunca plano en dominio
	Role         string // member, tenant_admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleMember || r == RoleTenantAdmin
}
