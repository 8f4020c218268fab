package repository

import (
	"context"

	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

// TaskRepository define el puerto de persistencia para Task (DIP).
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Task, error)
	Update(ctx context.Context, task *entity.Task) error
	ListByProject(ctx context.Context, tenantID, projectID string) ([]*entity.Task, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Task, error)
	Delete(ctx context.Context, tenantID, id string) (bool, error)
	// DeleteByProject borra todas las tareas del proyecto; devuelve cuántas.
	DeleteByProject(ctx context.Context, tenantID, projectID string) (int64, error)
}
