package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// TaskUseCase casos de uso de tareas. El permiso de borrado se hereda del
// creador del proyecto padre.
type TaskUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	log   *logger.Logger
}

// NewTaskUseCase construye el caso de uso.
func NewTaskUseCase(repos ports.Repos, tx ports.TxRunner, log *logger.Logger) *TaskUseCase {
	return &TaskUseCase{repos: repos, tx: tx, log: componentLogger(log, "tasks")}
}

// Create crea una tarea dentro de un proyecto del tenant del actor.
func (uc *TaskUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = entity.TaskStatusTodo
	}
	task := &entity.Task{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		ProjectID: in.ProjectID,
		Title:     in.Title,
		Status:    status,
		CreatedBy: actor.UserID,
		UpdatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.ValidateTask(task); err != nil {
		return nil, err
	}

	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		project, err := repos.Projects.GetForUpdate(ctx, actor.TenantID, in.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.NotFound("proyecto no encontrado")
		}
		if err := entity.ValidateTaskInProject(task, project); err != nil {
			return err
		}
		if err := authorize(uc.log, actor, authz.ActionCreate, taskResource(task, project)); err != nil {
			return err
		}
		return repos.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	out := dto.FromTask(task)
	return &out, nil
}

// Get obtiene una tarea del tenant del actor.
func (uc *TaskUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*dto.TaskResponse, error) {
	task, err := uc.repos.Tasks.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.NotFound("tarea no encontrada")
	}
	if err := authorize(uc.log, actor, authz.ActionRead, authz.Resource{Kind: authz.KindTask, ID: task.ID, TenantID: task.TenantID}); err != nil {
		return nil, err
	}
	out := dto.FromTask(task)
	return &out, nil
}

// List lista las tareas del tenant; con projectID solo las de ese proyecto.
// Un proyecto inexistente o de otro tenant da una lista vacía.
func (uc *TaskUseCase) List(ctx context.Context, actor entity.Actor, projectID string) ([]dto.TaskResponse, error) {
	if err := authorize(uc.log, actor, authz.ActionRead, authz.Resource{Kind: authz.KindTask, TenantID: actor.TenantID}); err != nil {
		return nil, err
	}
	var (
		list []*entity.Task
		err  error
	)
	if projectID != "" {
		list, err = uc.repos.Tasks.ListByProject(ctx, actor.TenantID, projectID)
	} else {
		list, err = uc.repos.Tasks.ListByTenant(ctx, actor.TenantID)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.TaskResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.FromTask(t))
	}
	return items, nil
}

// UpdateStatus cambia el estado de la tarea (cualquier transición) y registra
// al actor como último modificador.
func (uc *TaskUseCase) UpdateStatus(ctx context.Context, actor entity.Actor, id string, in dto.UpdateTaskStatusRequest) (*dto.TaskResponse, error) {
	if !entity.ValidTaskStatus(in.Status) {
		return nil, domain.Validation("INVALID_STATUS", "estado de tarea inválido: todo, in_progress o done")
	}
	var updated *entity.Task
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		task, err := repos.Tasks.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.NotFound("tarea no encontrada")
		}
		if err := authorize(uc.log, actor, authz.ActionUpdate, authz.Resource{Kind: authz.KindTask, ID: task.ID, TenantID: task.TenantID}); err != nil {
			return err
		}
		task.Status = in.Status
		task.UpdatedBy = actor.UserID
		task.UpdatedAt = time.Now().UTC()
		if err := repos.Tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	out := dto.FromTask(updated)
	return &out, nil
}

// Delete elimina una tarea. Solo el creador del proyecto o un tenant_admin.
func (uc *TaskUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		task, err := repos.Tasks.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.NotFound("tarea no encontrada")
		}
		project, err := repos.Projects.GetByID(ctx, actor.TenantID, task.ProjectID)
		if err != nil {
			return err
		}
		if err := authorize(uc.log, actor, authz.ActionDelete, taskResource(task, project)); err != nil {
			return err
		}
		deleted, err := repos.Tasks.Delete(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound("tarea no encontrada")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// taskResource: el dueño de la tarea es el creador de su proyecto.
func taskResource(t *entity.Task, p *entity.Project) authz.Resource {
	res := authz.Resource{Kind: authz.KindTask, ID: t.ID, TenantID: t.TenantID}
	if p != nil {
		res.OwnerID = p.CreatorID
	}
	return res
}
