package ports

import (
	"context"

	"github.com/jhoicas/taskflow-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Tenants  repository.TenantRepository
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
}

// TxRunner ejecuta fn dentro de una transacción corta: o se aplican todas
// las escrituras de fn o ninguna, y ningún lector concurrente ve un estado
// intermedio. Un error devuelto por fn hace rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
