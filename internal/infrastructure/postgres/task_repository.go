package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implementación del puerto TaskRepository sobre PostgreSQL.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador de persistencia para tareas.
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, tenant_id, project_id, title, status, created_by, updated_by, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(&t.ID, &t.TenantID, &t.ProjectID, &t.Title, &t.Status, &t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persiste una nueva tarea. La FK compuesta rechaza un proyecto de otro tenant.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.TenantID, t.ProjectID, t.Title, t.Status, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("proyecto no encontrado")
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea del tenant.
func (r *TaskRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return r.getByID(ctx, tenantID, id, "")
}

// GetForUpdate obtiene y bloquea la fila hasta el fin de la transacción.
func (r *TaskRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return r.getByID(ctx, tenantID, id, " FOR UPDATE")
}

func (r *TaskRepo) getByID(ctx context.Context, tenantID, id, lock string) (*entity.Task, error) {
	if !validID(id) || !validID(tenantID) {
		return nil, nil
	}
	t, err := scanTask(r.q.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = $1 AND id = $2`+lock, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Update actualiza título, estado y atribución, y refresca updated_at en la misma sentencia.
func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tasks SET title = $3, status = $4, updated_by = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`,
		t.TenantID, t.ID, t.Title, t.Status, t.UpdatedBy, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("tarea no encontrada")
	}
	return nil
}

// ListByProject lista las tareas de un proyecto; vacío si el proyecto no existe.
func (r *TaskRepo) ListByProject(ctx context.Context, tenantID, projectID string) ([]*entity.Task, error) {
	if !validID(tenantID) || !validID(projectID) {
		return []*entity.Task{}, nil
	}
	return r.list(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = $1 AND project_id = $2 ORDER BY created_at, id`,
		tenantID, projectID)
}

// ListByTenant lista todas las tareas del tenant.
func (r *TaskRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Task, error) {
	if !validID(tenantID) {
		return []*entity.Task{}, nil
	}
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE tenant_id = $1 ORDER BY created_at, id`, tenantID)
}

// Delete elimina una tarea del tenant. false si no existía.
func (r *TaskRepo) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	if !validID(id) || !validID(tenantID) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByProject elimina todas las tareas del proyecto; devuelve cuántas.
func (r *TaskRepo) DeleteByProject(ctx context.Context, tenantID, projectID string) (int64, error) {
	if !validID(tenantID) || !validID(projectID) {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE tenant_id = $1 AND project_id = $2`, tenantID, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks by project: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
