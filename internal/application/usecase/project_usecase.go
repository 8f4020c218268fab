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
	"github.com/jhoicas/taskflow-api/internal/domain/repository"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// ProjectUseCase casos de uso de proyectos. Toda lectura se limita al tenant
// del actor; toda escritura valida, autoriza y muta en una transacción.
type ProjectUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	log   *logger.Logger
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(repos ports.Repos, tx ports.TxRunner, log *logger.Logger) *ProjectUseCase {
	return &ProjectUseCase{repos: repos, tx: tx, log: componentLogger(log, "projects")}
}

// Create crea un proyecto cuyo creador es el actor.
func (uc *ProjectUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = entity.ProjectStatusActive
	}
	project := &entity.Project{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		CreatorID:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := entity.ValidateProject(project); err != nil {
		return nil, err
	}
	if err := authorize(uc.log, actor, authz.ActionCreate, authz.Resource{Kind: authz.KindProject, TenantID: actor.TenantID}); err != nil {
		return nil, err
	}
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		return repos.Projects.Create(ctx, project)
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	out := dto.FromProject(project)
	return &out, nil
}

// Get obtiene un proyecto del tenant del actor.
func (uc *ProjectUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*dto.ProjectResponse, error) {
	project, err := uc.get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromProject(project)
	return &out, nil
}

func (uc *ProjectUseCase) get(ctx context.Context, actor entity.Actor, id string) (*entity.Project, error) {
	project, err := uc.repos.Projects.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.NotFound("proyecto no encontrado")
	}
	if err := authorize(uc.log, actor, authz.ActionRead, projectResource(project)); err != nil {
		return nil, err
	}
	return project, nil
}

// List lista proyectos del tenant, más recientes primero.
func (uc *ProjectUseCase) List(ctx context.Context, actor entity.Actor, status string, page dto.PageRequest) ([]dto.ProjectResponse, error) {
	if status != "" && !entity.ValidProjectStatus(status) {
		return nil, domain.Validation("INVALID_STATUS", "estado de proyecto inválido: active o archived")
	}
	if err := authorize(uc.log, actor, authz.ActionRead, authz.Resource{Kind: authz.KindProject, TenantID: actor.TenantID}); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.Projects.ListByTenant(ctx, actor.TenantID, repository.ProjectFilter{
		Status: status,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FromProject(p))
	}
	return items, nil
}

// Update modifica nombre, descripción y/o estado (archivar/reactivar).
func (uc *ProjectUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	var updated *entity.Project
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		project, err := repos.Projects.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.NotFound("proyecto no encontrado")
		}
		if in.Name != nil {
			project.Name = *in.Name
		}
		if in.Description != nil {
			project.Description = *in.Description
		}
		if in.Status != nil {
			project.Status = *in.Status
		}
		if err := entity.ValidateProject(project); err != nil {
			return err
		}
		if err := authorize(uc.log, actor, authz.ActionUpdate, projectResource(project)); err != nil {
			return err
		}
		project.UpdatedAt = time.Now().UTC()
		if err := repos.Projects.Update(ctx, project); err != nil {
			return err
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	out := dto.FromProject(updated)
	return &out, nil
}

// Delete elimina el proyecto y todas sus tareas en la misma transacción.
// Solo el creador o un tenant_admin. Un segundo borrado devuelve NotFound.
func (uc *ProjectUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	var removedTasks int64
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		project, err := repos.Projects.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.NotFound("proyecto no encontrado")
		}
		if err := authorize(uc.log, actor, authz.ActionDelete, projectResource(project)); err != nil {
			return err
		}
		if removedTasks, err = repos.Tasks.DeleteByProject(ctx, actor.TenantID, id); err != nil {
			return err
		}
		deleted, err := repos.Projects.Delete(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound("proyecto no encontrado")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("project_id", id).Int64("tasks", removedTasks).Msg("proyecto eliminado")
	return nil
}

func projectResource(p *entity.Project) authz.Resource {
	return authz.Resource{Kind: authz.KindProject, ID: p.ID, TenantID: p.TenantID, OwnerID: p.CreatorID}
}
