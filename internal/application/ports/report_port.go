package ports

import (
	"context"

	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/stats"
)

// ProjectReport datos que se vuelcan en el reporte PDF de un proyecto.
type ProjectReport struct {
	Tenant   *entity.Tenant
	Project  *entity.Project
	Creator  *entity.User // puede ser nil si el creador fue eliminado
	Tasks    []*entity.Task
	Progress stats.ProjectStats
}

// ProjectReportGenerator genera la representación PDF de un proyecto.
type ProjectReportGenerator interface {
	GenerateProjectReport(ctx context.Context, report ProjectReport) ([]byte, error)
}
