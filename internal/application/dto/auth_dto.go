package dto

import "time"

// LoginRequest entrada para login. TenantSubdomain es opcional si el email
// es único entre organizaciones.
type LoginRequest struct {
	TenantSubdomain string `json:"tenantSubdomain"`
	Email           string `json:"email"`
	Password        string `json:"password"`
}

// LoginResponse salida con token JWT y el usuario autenticado.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// RegisterTenantRequest alta de una organización con su primer administrador.
type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminFullName string `json:"adminFullName"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

// TenantResponse salida de una organización.
type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterTenantResponse organización creada y su administrador.
type RegisterTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Admin  UserResponse   `json:"admin"`
}
