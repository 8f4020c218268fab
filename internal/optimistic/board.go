package optimistic

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/stats"
)

// API operaciones remotas que usa el Board. Lo implementa *apiclient.Client.
type API interface {
	GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error)
	ListTasks(ctx context.Context, projectID string) ([]dto.TaskResponse, error)
	CreateTask(ctx context.Context, in dto.CreateTaskRequest) (*dto.TaskResponse, error)
	UpdateTaskStatus(ctx context.Context, id, status string) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
}

// tempPrefix marca los ids locales de tareas aún no confirmadas.
const tempPrefix = "tmp-"

// Board vista de detalle de proyectos con sus tareas: dos controladores
// (proyectos y tareas) atados al cliente de la API.
type Board struct {
	api      API
	Projects *Controller[entity.Project]
	Tasks    *Controller[entity.Task]

	mu    sync.RWMutex
	actor *entity.Actor
	now   func() time.Time
}

// NewBoard construye el board. cfg.Name se ignora: cada controlador usa el suyo.
func NewBoard(api API, cfg Config) *Board {
	pc, tc := cfg, cfg
	pc.Name, tc.Name = "projects", "tasks"
	return &Board{
		api:      api,
		Projects: NewController(func(p entity.Project) string { return p.ID }, pc),
		Tasks:    NewController(func(t entity.Task) string { return t.ID }, tc),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetActor fija el actor de la sesión: se usa para el pre-chequeo de
// autorización y para la atribución tentativa (updatedBy).
func (b *Board) SetActor(actor entity.Actor) {
	b.mu.Lock()
	b.actor = &actor
	b.mu.Unlock()
	b.Projects.SetActor(&actor)
	b.Tasks.SetActor(&actor)
}

// LoadProject carga el proyecto y sus tareas como estado autoritativo.
func (b *Board) LoadProject(ctx context.Context, projectID string) error {
	p, err := b.api.GetProject(ctx, projectID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			b.forgetProject(projectID)
		}
		return err
	}
	tasks, err := b.api.ListTasks(ctx, projectID)
	if err != nil {
		return err
	}
	b.Projects.Load(p.ToProject())
	loaded := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		loaded = append(loaded, t.ToTask())
	}
	b.Tasks.Load(loaded...)
	return nil
}

// CreateTask muestra la tarea nueva con un id temporal y la crea en el servidor.
func (b *Board) CreateTask(ctx context.Context, projectID, title string) (*Pending[entity.Task], error) {
	project, ok := b.Projects.Get(projectID)
	if !ok {
		return nil, domain.NotFound("proyecto no encontrado")
	}
	now := b.now()
	tentative := entity.Task{
		ID:        tempPrefix + uuid.NewString(),
		TenantID:  project.TenantID,
		ProjectID: projectID,
		Title:     title,
		Status:    entity.TaskStatusTodo,
		CreatedBy: b.actorID(),
		UpdatedBy: b.actorID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.ValidateTask(&tentative); err != nil {
		return nil, err
	}
	_, _, p, err := b.Tasks.Apply(ctx, Mutation[entity.Task]{
		Op:       OpCreate,
		EntityID: tentative.ID,
		Apply:    func(entity.Task) entity.Task { return tentative },
		Send: func(ctx context.Context) (entity.Task, error) {
			out, err := b.api.CreateTask(ctx, dto.CreateTaskRequest{ProjectID: projectID, Title: title})
			if err != nil {
				return entity.Task{}, err
			}
			return out.ToTask(), nil
		},
		Check: &Check{Action: authz.ActionCreate, Resource: authz.Resource{Kind: authz.KindTask, TenantID: project.TenantID}},
	})
	return p, err
}

// SetTaskStatus cambia el estado de la tarea de forma optimista. Sobre una
// tarea ausente es un no-op (Pending nil).
func (b *Board) SetTaskStatus(ctx context.Context, taskID, status string) (*Pending[entity.Task], error) {
	if !entity.ValidTaskStatus(status) {
		return nil, domain.Validation("INVALID_STATUS", "estado de tarea inválido: todo, in_progress o done")
	}
	task, ok := b.Tasks.Get(taskID)
	if !ok {
		return nil, nil
	}
	actorID, now := b.actorID(), b.now()
	_, _, p, err := b.Tasks.Apply(ctx, Mutation[entity.Task]{
		Op:       OpUpdate,
		EntityID: taskID,
		Apply: func(t entity.Task) entity.Task {
			t.Status = status
			if actorID != "" {
				t.UpdatedBy = actorID
			}
			t.UpdatedAt = now
			return t
		},
		Send: func(ctx context.Context) (entity.Task, error) {
			out, err := b.api.UpdateTaskStatus(ctx, taskID, status)
			if err != nil {
				return entity.Task{}, err
			}
			return out.ToTask(), nil
		},
		Check: &Check{Action: authz.ActionUpdate, Resource: authz.Resource{Kind: authz.KindTask, ID: taskID, TenantID: task.TenantID}},
	})
	return p, err
}

// DeleteTask borra la tarea de forma optimista. El permiso se hereda del
// creador del proyecto.
func (b *Board) DeleteTask(ctx context.Context, taskID string) (*Pending[entity.Task], error) {
	task, ok := b.Tasks.Get(taskID)
	if !ok {
		return nil, nil
	}
	owner := ""
	if project, ok := b.Projects.Get(task.ProjectID); ok {
		owner = project.CreatorID
	}
	_, _, p, err := b.Tasks.Apply(ctx, Mutation[entity.Task]{
		Op:       OpDelete,
		EntityID: taskID,
		Send: func(ctx context.Context) (entity.Task, error) {
			return entity.Task{}, b.api.DeleteTask(ctx, taskID)
		},
		Check: &Check{Action: authz.ActionDelete, Resource: authz.Resource{Kind: authz.KindTask, ID: taskID, TenantID: task.TenantID, OwnerID: owner}},
	})
	return p, err
}

// DeleteProject borra el proyecto de forma optimista; al confirmarse el
// borrado sus tareas se eliminan también de la vista local.
func (b *Board) DeleteProject(ctx context.Context, projectID string) (*Pending[entity.Project], error) {
	project, ok := b.Projects.Get(projectID)
	if !ok {
		return nil, nil
	}
	_, _, p, err := b.Projects.Apply(ctx, Mutation[entity.Project]{
		Op:       OpDelete,
		EntityID: projectID,
		Send: func(ctx context.Context) (entity.Project, error) {
			err := b.api.DeleteProject(ctx, projectID)
			if err == nil || domain.KindOf(err) == domain.KindNotFound {
				b.forgetTasks(projectID)
			}
			return entity.Project{}, err
		},
		Check: &Check{Action: authz.ActionDelete, Resource: authz.Resource{Kind: authz.KindProject, ID: projectID, TenantID: project.TenantID, OwnerID: project.CreatorID}},
	})
	return p, err
}

// TasksOf devuelve las tareas visibles de un proyecto.
func (b *Board) TasksOf(projectID string) []entity.Task {
	all := b.Tasks.Values()
	out := make([]entity.Task, 0, len(all))
	for _, t := range all {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// Stats recalcula el resumen sobre las vistas actuales (tentativas incluidas).
func (b *Board) Stats() stats.Stats {
	return stats.Summarize(b.Projects.Values(), b.Tasks.Values())
}

func (b *Board) forgetProject(projectID string) {
	b.Projects.Forget(projectID)
	b.forgetTasks(projectID)
}

// forgetTasks olvida las tareas del proyecto, visibles o no: una tarea con su
// propio delete en vuelo no debe volver si ese delete falla.
func (b *Board) forgetTasks(projectID string) {
	b.Tasks.ForgetWhere(func(t entity.Task) bool { return t.ProjectID == projectID })
}

func (b *Board) actorID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.actor == nil {
		return ""
	}
	return b.actor.UserID
}
