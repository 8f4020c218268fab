package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implementación del puerto ProjectRepository sobre PostgreSQL.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador de persistencia para proyectos.
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

const projectColumns = `id, tenant_id, name, description, status, creator_id, created_at, updated_at`

func scanProject(row pgx.Row) (*entity.Project, error) {
	var p entity.Project
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo proyecto.
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TenantID, p.Name, p.Description, p.Status, p.CreatorID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("organización no encontrada")
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID obtiene un proyecto del tenant.
func (r *ProjectRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	return r.getByID(ctx, tenantID, id, "")
}

// GetForUpdate obtiene y bloquea la fila hasta el fin de la transacción.
func (r *ProjectRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	return r.getByID(ctx, tenantID, id, " FOR UPDATE")
}

func (r *ProjectRepo) getByID(ctx context.Context, tenantID, id, lock string) (*entity.Project, error) {
	if !validID(id) || !validID(tenantID) {
		return nil, nil
	}
	p, err := scanProject(r.q.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE tenant_id = $1 AND id = $2`+lock, tenantID, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Update actualiza nombre, descripción y estado, y refresca updated_at en la misma sentencia.
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE projects SET name = $3, description = $4, status = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, p.Name, p.Description, p.Status, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("proyecto no encontrado")
	}
	return nil
}

// ListByTenant lista proyectos del tenant, más recientes primero.
func (r *ProjectRepo) ListByTenant(ctx context.Context, tenantID string, filter repository.ProjectFilter) ([]*entity.Project, error) {
	out := make([]*entity.Project, 0)
	if !validID(tenantID) {
		return out, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + projectColumns + ` FROM projects WHERE tenant_id = $1`)
	args := []any{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}
	sb.WriteString(` ORDER BY created_at DESC, id`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete elimina un proyecto del tenant; sus tareas caen por ON DELETE CASCADE
// aunque el caso de uso las borra antes de forma explícita.
func (r *ProjectRepo) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	if !validID(id) || !validID(tenantID) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
