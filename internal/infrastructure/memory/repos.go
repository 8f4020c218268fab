package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/repository"
)

var (
	_ repository.TenantRepository  = (*TenantRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ProjectRepository = (*ProjectRepo)(nil)
	_ repository.TaskRepository    = (*TaskRepo)(nil)
)

func reposFor(s *Store, t *tx) ports.Repos {
	b := base{s: s, t: t}
	return ports.Repos{
		Tenants:  &TenantRepo{b},
		Users:    &UserRepo{b},
		Projects: &ProjectRepo{b},
		Tasks:    &TaskRepo{b},
	}
}

// base ejecuta cada operación en la transacción activa o, sin ella, en una
// transacción propia que se confirma al terminar.
type base struct {
	s *Store
	t *tx
}

func (b base) do(ctx context.Context, fn func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.t != nil {
		return fn(b.t)
	}
	return b.s.autocommit(fn)
}

func getAs[T any](ctx context.Context, b base, k key, forUpdate bool) (*T, error) {
	var out *T
	err := b.do(ctx, func(t *tx) error {
		if forUpdate {
			if err := t.lock(ctx, k); err != nil {
				return err
			}
		}
		v, ok := t.get(k)
		if !ok {
			return nil
		}
		val := v.(T)
		out = &val
		return nil
	})
	return out, err
}

func listAs[T any](ctx context.Context, b base, k kind, keep func(T) bool) ([]*T, error) {
	var out []*T
	err := b.do(ctx, func(t *tx) error {
		for _, v := range t.list(k) {
			val := v.(T)
			if keep(val) {
				out = append(out, &val)
			}
		}
		return nil
	})
	return out, err
}

func page[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ── Tenants ─────────────────────────────────────────────────────────────

// TenantRepo implementa repository.TenantRepository en memoria.
type TenantRepo struct{ base }

func (r *TenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindTenant, tenant.ID}, *tenant, true)
		return nil
	})
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	return getAs[entity.Tenant](ctx, r.base, key{kindTenant, id}, false)
}

func (r *TenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error) {
	list, err := listAs(ctx, r.base, kindTenant, func(t entity.Tenant) bool { return t.Subdomain == subdomain })
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// ── Users ───────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository en memoria.
type UserRepo struct{ base }

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindUser, user.ID}, *user, true)
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.User, error) {
	return getScoped(ctx, r.base, key{kindUser, id}, false, func(u *entity.User) bool { return u.TenantID == tenantID })
}

func (r *UserRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.User, error) {
	return getScoped(ctx, r.base, key{kindUser, id}, true, func(u *entity.User) bool { return u.TenantID == tenantID })
}

func (r *UserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*entity.User, error) {
	list, err := listAs(ctx, r.base, kindUser, func(u entity.User) bool { return u.TenantID == tenantID && u.Email == email })
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) ([]*entity.User, error) {
	return listAs(ctx, r.base, kindUser, func(u entity.User) bool { return u.Email == email })
}

func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindUser, user.ID}, *user, false)
		return nil
	})
}

func (r *UserRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	list, err := listAs(ctx, r.base, kindUser, func(u entity.User) bool { return u.TenantID == tenantID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *UserRepo) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	return deleteScoped(ctx, r.base, key{kindUser, id}, func(v any) bool { return v.(entity.User).TenantID == tenantID })
}

// ── Projects ────────────────────────────────────────────────────────────

// ProjectRepo implementa repository.ProjectRepository en memoria.
type ProjectRepo struct{ base }

func (r *ProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindProject, project.ID}, *project, true)
		return nil
	})
}

func (r *ProjectRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	return getScoped(ctx, r.base, key{kindProject, id}, false, func(p *entity.Project) bool { return p.TenantID == tenantID })
}

func (r *ProjectRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	return getScoped(ctx, r.base, key{kindProject, id}, true, func(p *entity.Project) bool { return p.TenantID == tenantID })
}

func (r *ProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindProject, project.ID}, *project, false)
		return nil
	})
}

// ListByTenant devuelve los proyectos más recientes primero.
func (r *ProjectRepo) ListByTenant(ctx context.Context, tenantID string, filter repository.ProjectFilter) ([]*entity.Project, error) {
	list, err := listAs(ctx, r.base, kindProject, func(p entity.Project) bool {
		return p.TenantID == tenantID && (filter.Status == "" || p.Status == filter.Status)
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *ProjectRepo) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	return deleteScoped(ctx, r.base, key{kindProject, id}, func(v any) bool { return v.(entity.Project).TenantID == tenantID })
}

// ── Tasks ───────────────────────────────────────────────────────────────

// TaskRepo implementa repository.TaskRepository en memoria.
type TaskRepo struct{ base }

func (r *TaskRepo) Create(ctx context.Context, task *entity.Task) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindTask, task.ID}, *task, true)
		return nil
	})
}

func (r *TaskRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return getScoped(ctx, r.base, key{kindTask, id}, false, func(t *entity.Task) bool { return t.TenantID == tenantID })
}

func (r *TaskRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return getScoped(ctx, r.base, key{kindTask, id}, true, func(t *entity.Task) bool { return t.TenantID == tenantID })
}

func (r *TaskRepo) Update(ctx context.Context, task *entity.Task) error {
	return r.do(ctx, func(t *tx) error {
		t.put(key{kindTask, task.ID}, *task, false)
		return nil
	})
}

func (r *TaskRepo) ListByProject(ctx context.Context, tenantID, projectID string) ([]*entity.Task, error) {
	return r.list(ctx, func(t entity.Task) bool { return t.TenantID == tenantID && t.ProjectID == projectID })
}

func (r *TaskRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Task, error) {
	return r.list(ctx, func(t entity.Task) bool { return t.TenantID == tenantID })
}

func (r *TaskRepo) list(ctx context.Context, keep func(entity.Task) bool) ([]*entity.Task, error) {
	list, err := listAs(ctx, r.base, kindTask, keep)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	if list == nil {
		list = []*entity.Task{}
	}
	return list, nil
}

func (r *TaskRepo) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	return deleteScoped(ctx, r.base, key{kindTask, id}, func(v any) bool { return v.(entity.Task).TenantID == tenantID })
}

func (r *TaskRepo) DeleteByProject(ctx context.Context, tenantID, projectID string) (int64, error) {
	var n int64
	err := r.do(ctx, func(t *tx) error {
		for _, v := range t.list(kindTask) {
			task := v.(entity.Task)
			if task.TenantID == tenantID && task.ProjectID == projectID {
				t.del(key{kindTask, task.ID})
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── helpers ─────────────────────────────────────────────────────────────

// getScoped descarta un resultado de otro tenant: se comporta como ausente.
func getScoped[T any](ctx context.Context, b base, k key, forUpdate bool, sameTenant func(*T) bool) (*T, error) {
	v, err := getAs[T](ctx, b, k, forUpdate)
	if err != nil || v == nil || !sameTenant(v) {
		return nil, err
	}
	return v, nil
}

func deleteScoped(ctx context.Context, b base, k key, sameTenant func(any) bool) (bool, error) {
	var deleted bool
	err := b.do(ctx, func(t *tx) error {
		v, ok := t.get(k)
		if !ok || !sameTenant(v) {
			return nil
		}
		t.del(k)
		deleted = true
		return nil
	})
	return deleted, err
}
