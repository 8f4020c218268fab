package dto

import "github.com/jhoicas/taskflow-api/internal/domain/entity"

// FromTenant convierte una entidad Tenant en su respuesta.
func FromTenant(t *entity.Tenant) TenantResponse {
	return TenantResponse{ID: t.ID, Name: t.Name, Subdomain: t.Subdomain, CreatedAt: t.CreatedAt}
}

// FromUser convierte una entidad User en su respuesta (nunca expone el hash).
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FromProject convierte una entidad Project en su respuesta.
func FromProject(p *entity.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromTask convierte una entidad Task en su respuesta.
func FromTask(t *entity.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		TenantID:  t.TenantID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Status:    t.Status,
		CreatedBy: t.CreatedBy,
		UpdatedBy: t.UpdatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToProject reconstruye la entidad desde la respuesta (lado cliente).
func (r ProjectResponse) ToProject() entity.Project {
	return entity.Project{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		CreatorID:   r.CreatorID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToTask reconstruye la entidad desde la respuesta (lado cliente).
func (r TaskResponse) ToTask() entity.Task {
	return entity.Task{
		ID:        r.ID,
		TenantID:  r.TenantID,
		ProjectID: r.ProjectID,
		Title:     r.Title,
		Status:    r.Status,
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.UpdatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToUser reconstruye la entidad desde la respuesta (lado cliente).
func (r UserResponse) ToUser() entity.User {
	return entity.User{
		ID:        r.ID,
		TenantID:  r.TenantID,
		FullName:  r.FullName,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
