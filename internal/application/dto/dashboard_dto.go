package dto

import "github.com/jhoicas/taskflow-api/internal/domain/stats"

// DashboardResponse resumen del tenant para el dashboard.
type DashboardResponse struct {
	Stats          stats.Stats       `json:"stats"`
	RecentProjects []ProjectResponse `json:"recentProjects"`
}
