package entity

// Actor es la terna (usuario, tenant, rol) que realiza una petición.
// No se persiste: se reconstruye desde la credencial en cada petición y se
// pasa explícitamente a la autorización y al Entity Store.
type Actor struct {
	UserID   string
	TenantID string
	Role     string
}

// IsAdmin indica si el actor es administrador de su tenant.
func (a Actor) IsAdmin() bool { return a.Role == RoleTenantAdmin }

// IsZero indica un actor sin resolver.
func (a Actor) IsZero() bool { return a.UserID == "" && a.TenantID == "" }
