// Package analytics contiene los casos de uso de lectura agregada: el
// dashboard del tenant, el avance por proyecto y el reporte PDF.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/repository"
	"github.com/jhoicas/taskflow-api/internal/domain/stats"
)

const dashboardRecentProjects = 3 // proyectos recientes en el widget del dashboard

// DashboardUseCase recalcula los resúmenes en cada petición; no guarda estado.
type DashboardUseCase struct {
	repos ports.Repos
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repos ports.Repos) *DashboardUseCase {
	return &DashboardUseCase{repos: repos}
}

// GetSummary construye el resumen del tenant del actor.
//
// Dos lecturas en paralelo:
//  1. proyectos del tenant → conteo de activos y recientes
//  2. tareas del tenant    → completadas / pendientes por proyecto
func (uc *DashboardUseCase) GetSummary(ctx context.Context, actor entity.Actor) (*dto.DashboardResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRead, authz.Resource{Kind: authz.KindProject, TenantID: actor.TenantID}).Err(); err != nil {
		return nil, err
	}

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type projectsResult struct {
		list []*entity.Project
		err  error
	}
	type tasksResult struct {
		list []*entity.Task
		err  error
	}
	projectsCh := make(chan projectsResult, 1)
	tasksCh := make(chan tasksResult, 1)

	go func() {
		list, err := uc.repos.Projects.ListByTenant(ctx, actor.TenantID, repository.ProjectFilter{})
		projectsCh <- projectsResult{list, err}
	}()
	go func() {
		list, err := uc.repos.Tasks.ListByTenant(ctx, actor.TenantID)
		tasksCh <- tasksResult{list, err}
	}()

	projects := <-projectsCh
	tasks := <-tasksCh
	if projects.err != nil {
		return nil, fmt.Errorf("dashboard: proyectos: %w", projects.err)
	}
	if tasks.err != nil {
		return nil, fmt.Errorf("dashboard: tareas: %w", tasks.err)
	}

	summary := stats.Summarize(derefProjects(projects.list), derefTasks(tasks.list))

	// ── Recientes: últimos actualizados ──────────────────────────────────────
	recent := append([]*entity.Project(nil), projects.list...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].UpdatedAt.After(recent[j].UpdatedAt) })
	if len(recent) > dashboardRecentProjects {
		recent = recent[:dashboardRecentProjects]
	}
	out := &dto.DashboardResponse{Stats: summary, RecentProjects: make([]dto.ProjectResponse, 0, len(recent))}
	for _, p := range recent {
		out.RecentProjects = append(out.RecentProjects, dto.FromProject(p))
	}
	return out, nil
}

// ProjectStats devuelve el avance de un proyecto del tenant del actor.
func (uc *DashboardUseCase) ProjectStats(ctx context.Context, actor entity.Actor, projectID string) (*stats.ProjectStats, error) {
	project, tasks, err := loadProject(ctx, uc.repos, actor, projectID)
	if err != nil {
		return nil, err
	}
	ps := stats.ForProject(*project, derefTasks(tasks))
	return &ps, nil
}

func loadProject(ctx context.Context, repos ports.Repos, actor entity.Actor, projectID string) (*entity.Project, []*entity.Task, error) {
	project, err := repos.Projects.GetByID(ctx, actor.TenantID, projectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, domain.NotFound("proyecto no encontrado")
	}
	res := authz.Resource{Kind: authz.KindProject, ID: project.ID, TenantID: project.TenantID, OwnerID: project.CreatorID}
	if err := authz.Authorize(actor, authz.ActionRead, res).Err(); err != nil {
		return nil, nil, err
	}
	tasks, err := repos.Tasks.ListByProject(ctx, actor.TenantID, project.ID)
	if err != nil {
		return nil, nil, err
	}
	return project, tasks, nil
}

func derefProjects(in []*entity.Project) []entity.Project {
	out := make([]entity.Project, len(in))
	for i, p := range in {
		out[i] = *p
	}
	return out
}

func derefTasks(in []*entity.Task) []entity.Task {
	out := make([]entity.Task, len(in))
	for i, t := range in {
		out[i] = *t
	}
	return out
}
