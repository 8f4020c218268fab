package entity

import "time"

// Estados válidos de Project.
const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project agrupa tareas. TenantID coincide con el del creador y el de cada tarea.
type Project struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Status      string // active, archived
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidProjectStatus indica si s es un estado de proyecto conocido.
func ValidProjectStatus(s string) bool {
	return s == ProjectStatusActive || s == ProjectStatusArchived
}
