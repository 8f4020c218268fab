package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/application/usecase"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/memory"
)

// fixture: dos organizaciones (acme y globex) con un admin y dos miembros en acme.
type fixture struct {
	store    *memory.Store
	projects *usecase.ProjectUseCase
	tasks    *usecase.TaskUseCase
	users    *usecase.UserUseCase

	admin   entity.Actor
	member  entity.Actor
	member2 entity.Actor
	globex  entity.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	f := &fixture{
		store:    store,
		projects: usecase.NewProjectUseCase(store.Repos(), store, nil),
		tasks:    usecase.NewTaskUseCase(store.Repos(), store, nil),
		users:    usecase.NewUserUseCase(store.Repos(), store, nil),
		admin:    entity.Actor{UserID: "acme-admin", TenantID: "acme", Role: entity.RoleTenantAdmin},
		member:   entity.Actor{UserID: "acme-bob", TenantID: "acme", Role: entity.RoleMember},
		member2:  entity.Actor{UserID: "acme-carol", TenantID: "acme", Role: entity.RoleMember},
		globex:   entity.Actor{UserID: "globex-admin", TenantID: "globex", Role: entity.RoleTenantAdmin},
	}

	require.NoError(t, store.Run(ctx, func(r ports.Repos) error {
		for _, tn := range []entity.Tenant{
			{ID: "acme", Name: "Acme", Subdomain: "acme", CreatedAt: now},
			{ID: "globex", Name: "Globex", Subdomain: "globex", CreatedAt: now},
		} {
			tn := tn
			if err := r.Tenants.Create(ctx, &tn); err != nil {
				return err
			}
		}
		for _, a := range []entity.Actor{f.admin, f.member, f.member2, f.globex} {
			u := entity.User{
				ID: a.UserID, TenantID: a.TenantID, FullName: a.UserID,
				Email: a.UserID + "@example.com", Role: a.Role, CreatedAt: now, UpdatedAt: now,
			}
			if err := r.Users.Create(ctx, &u); err != nil {
				return err
			}
		}
		return nil
	}))
	return f
}
