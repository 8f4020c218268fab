package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/stats"
)

// ReportUseCase genera el reporte PDF de avance de un proyecto.
type ReportUseCase struct {
	repos     ports.Repos
	generator ports.ProjectReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(repos ports.Repos, generator ports.ProjectReportGenerator) *ReportUseCase {
	return &ReportUseCase{repos: repos, generator: generator}
}

// ProjectReport devuelve el PDF y un nombre de archivo sugerido.
func (uc *ReportUseCase) ProjectReport(ctx context.Context, actor entity.Actor, projectID string) ([]byte, string, error) {
	project, tasks, err := loadProject(ctx, uc.repos, actor, projectID)
	if err != nil {
		return nil, "", err
	}
	tenant, err := uc.repos.Tenants.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, "", err
	}
	if tenant == nil {
		return nil, "", domain.NotFound("organización no encontrada")
	}
	creator, err := uc.repos.Users.GetByID(ctx, actor.TenantID, project.CreatorID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := uc.generator.GenerateProjectReport(ctx, ports.ProjectReport{
		Tenant:   tenant,
		Project:  project,
		Creator:  creator,
		Tasks:    tasks,
		Progress: stats.ForProject(*project, derefTasks(tasks)),
	})
	if err != nil {
		return nil, "", fmt.Errorf("report: %w", err)
	}
	return pdf, fmt.Sprintf("proyecto-%s.pdf", project.ID), nil
}
