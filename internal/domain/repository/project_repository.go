package repository

import (
	"context"

	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

// ProjectFilter filtros de listado de proyectos.
type ProjectFilter struct {
	Status string // vacío = todos
	Limit  int
	Offset int
}

// ProjectRepository define el puerto de persistencia para Project (DIP).
// GetForUpdate bloquea la fila hasta el fin de la transacción.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	ListByTenant(ctx context.Context, tenantID string, filter ProjectFilter) ([]*entity.Project, error)
	Delete(ctx context.Context, tenantID, id string) (bool, error)
}
