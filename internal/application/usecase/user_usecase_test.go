package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

func TestUserUseCase_CreateSoloAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := dto.CreateUserRequest{FullName: "Dave", Email: " Dave@Acme.io ", Password: "secret123"}

	_, err := f.users.Create(ctx, f.member, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	u, err := f.users.Create(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, "dave@acme.io", u.Email)
	assert.Equal(t, entity.RoleMember, u.Role)
	assert.Equal(t, "acme", u.TenantID)

	_, err = f.users.Create(ctx, f.admin, in)
	assert.Equal(t, domain.CodeEmailExists, domain.CodeOf(err))

	// el mismo email en otra organización es válido
	_, err = f.users.Create(ctx, f.globex, in)
	require.NoError(t, err)
}

func TestUserUseCase_CreateValida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, f.admin, dto.CreateUserRequest{FullName: "X", Email: "x@acme.io", Password: "corta"})
	assert.Equal(t, "WEAK_PASSWORD", domain.CodeOf(err))

	_, err = f.users.Create(ctx, f.admin, dto.CreateUserRequest{FullName: "X", Email: "x@acme.io", Password: "secret123", Role: "owner"})
	assert.Equal(t, "INVALID_ROLE", domain.CodeOf(err))

	_, err = f.users.Create(ctx, f.admin, dto.CreateUserRequest{FullName: "X", Email: "no-es-email", Password: "secret123"})
	assert.Equal(t, "INVALID_EMAIL", domain.CodeOf(err))
}

func TestUserUseCase_AdminNoPuedeBorrarse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.users.Delete(ctx, f.admin, f.admin.UserID), domain.ErrForbidden)

	still, err := f.users.Get(ctx, f.admin, f.admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTenantAdmin, still.Role)
}

func TestUserUseCase_DeleteIdempotenteYAislado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.users.Delete(ctx, f.member, f.member2.UserID), domain.ErrForbidden)
	assert.ErrorIs(t, f.users.Delete(ctx, f.globex, f.member2.UserID), domain.ErrNotFound)

	require.NoError(t, f.users.Delete(ctx, f.admin, f.member2.UserID))
	assert.ErrorIs(t, f.users.Delete(ctx, f.admin, f.member2.UserID), domain.ErrNotFound)

	list, err := f.users.List(ctx, f.admin, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUserUseCase_UpdateRol(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Update(ctx, f.member, f.member.UserID, dto.UpdateUserRequest{Role: ptr(entity.RoleTenantAdmin)})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un miembro no se autopromueve")

	u, err := f.users.Update(ctx, f.member, f.member.UserID, dto.UpdateUserRequest{FullName: ptr("Bob B."), Role: ptr(entity.RoleMember)})
	require.NoError(t, err, "repetir el rol actual no es un cambio de rol")
	assert.Equal(t, "Bob B.", u.FullName)

	_, err = f.users.Update(ctx, f.member, f.member2.UserID, dto.UpdateUserRequest{FullName: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	promoted, err := f.users.Update(ctx, f.admin, f.member.UserID, dto.UpdateUserRequest{Role: ptr(entity.RoleTenantAdmin)})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTenantAdmin, promoted.Role)
}
