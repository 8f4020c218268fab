package repository

import (
	"context"

	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Toda consulta recibe tenantID salvo FindByEmail, reservado para el login.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.User, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*entity.User, error)
	// FindByEmail busca en todos los tenants (login sin subdominio).
	FindByEmail(ctx context.Context, email string) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error)
	Delete(ctx context.Context, tenantID, id string) (bool, error)
}
