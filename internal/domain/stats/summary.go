// Package stats deriva resúmenes de solo lectura (conteos y porcentaje de
// avance) a partir de proyectos y tareas. No guarda estado: cada llamada
// recalcula sobre la instantánea recibida.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ProjectStats avance de un proyecto.
type ProjectStats struct {
	ProjectID            string `json:"projectId"`
	Name                 string `json:"name"`
	Status               string `json:"status"`
	TotalTasks           int    `json:"totalTasks"`
	DoneTasks            int    `json:"doneTasks"`
	CompletionPercentage int    `json:"completionPercentage"`
}

// Stats resumen de un conjunto de proyectos y tareas.
type Stats struct {
	ActiveProjectCount int            `json:"activeProjectCount"`
	CompletedTaskCount int            `json:"completedTaskCount"`
	PendingTaskCount   int            `json:"pendingTaskCount"`
	Projects           []ProjectStats `json:"projects"`
}

// CompletionPercentage devuelve round(100 * done / total), redondeo half-up
// (lejos de cero); 0 cuando total == 0.
func CompletionPercentage(done, total int) int {
	if total <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(done)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(pct.IntPart())
}

// Summarize calcula los conteos globales y el avance por proyecto.
// Las tareas cuyo proyecto no está en projects se ignoran; el orden de
// Projects sigue al de la entrada.
func Summarize(projects []entity.Project, tasks []entity.Task) Stats {
	type counter struct{ total, done int }

	index := make(map[string]*counter, len(projects))
	out := Stats{Projects: make([]ProjectStats, 0, len(projects))}
	for _, p := range projects {
		index[p.ID] = &counter{}
		if p.Status == entity.ProjectStatusActive {
			out.ActiveProjectCount++
		}
	}

	for _, t := range tasks {
		c, ok := index[t.ProjectID]
		if !ok {
			continue
		}
		c.total++
		if t.Status == entity.TaskStatusDone {
			c.done++
			out.CompletedTaskCount++
		} else {
			out.PendingTaskCount++
		}
	}

	for _, p := range projects {
		c := index[p.ID]
		out.Projects = append(out.Projects, ProjectStats{
			ProjectID:            p.ID,
			Name:                 p.Name,
			Status:               p.Status,
			TotalTasks:           c.total,
			DoneTasks:            c.done,
			CompletionPercentage: CompletionPercentage(c.done, c.total),
		})
	}
	return out
}

// ForProject devuelve el avance de un único proyecto.
func ForProject(project entity.Project, tasks []entity.Task) ProjectStats {
	s := Summarize([]entity.Project{project}, tasks)
	return s.Projects[0]
}
