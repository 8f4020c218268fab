package dto

import "time"

// CreateTaskRequest entrada para crear una tarea.
type CreateTaskRequest struct {
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Status    string `json:"status"` // todo por defecto
}

// UpdateTaskStatusRequest entrada de PATCH /tasks/:id (solo estado).
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// TaskResponse salida de una tarea.
type TaskResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
