package entity

import "time"

// Tenant representa una organización aislada (raíz del agregado multi-tenant).
// El subdominio es único, en minúsculas e inmutable tras la creación.
type Tenant struct {
	ID        string
	Name      string
	Subdomain string
	CreatedAt time.Time
}
