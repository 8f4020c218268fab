package entity

import "time"

// Estados válidos de Task. Cualquier transición está permitida.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task es un elemento de trabajo dentro de un Project.
// TenantID se desnormaliza desde el proyecto para filtrar sin join.
type Task struct {
	ID        string
	TenantID  string
	ProjectID string
	Title     string
	Status    string // todo, in_progress, done
	CreatedBy string
	UpdatedBy string // último actor que la modificó
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidTaskStatus indica si s es un estado de tarea conocido.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}
