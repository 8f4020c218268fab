package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// UserUseCase aplica reglas de negocio para usuarios del tenant.
// Crear, borrar y cambiar roles requiere tenant_admin.
type UserUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	log   *logger.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repos ports.Repos, tx ports.TxRunner, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repos: repos, tx: tx, log: componentLogger(log, "users")}
}

// Create da de alta un usuario en el tenant del actor.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	now := time.Now().UTC()
	role := in.Role
	if role == "" {
		role = entity.RoleMember
	}
	user := &entity.User{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		FullName:  in.FullName,
		Email:     entity.NormalizeEmail(in.Email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.ValidateUser(user); err != nil {
		return nil, err
	}
	if err := entity.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := authorize(uc.log, actor, authz.ActionCreate, authz.Resource{Kind: authz.KindUser, TenantID: actor.TenantID}); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	err = uc.tx.Run(ctx, func(repos ports.Repos) error {
		existing, err := repos.Users.GetByEmail(ctx, actor.TenantID, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Validation(domain.CodeEmailExists, "el email ya está registrado en la organización")
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Get obtiene un usuario del tenant del actor.
func (uc *UserUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*dto.UserResponse, error) {
	user, err := uc.repos.Users.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("usuario no encontrado")
	}
	if err := authorize(uc.log, actor, authz.ActionRead, userResource(user, false)); err != nil {
		return nil, err
	}
	out := dto.FromUser(user)
	return &out, nil
}

// List lista usuarios del tenant con paginación.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) ([]dto.UserResponse, error) {
	if err := authorize(uc.log, actor, authz.ActionRead, authz.Resource{Kind: authz.KindUser, TenantID: actor.TenantID}); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repos.Users.ListByTenant(ctx, actor.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, dto.FromUser(u))
	}
	return items, nil
}

// Update modifica nombre y/o rol. Cambiar el rol (incluido el propio)
// requiere tenant_admin; el nombre lo puede cambiar el propio usuario.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var updated *entity.User
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		user, err := repos.Users.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NotFound("usuario no encontrado")
		}
		changesRole := in.Role != nil && *in.Role != user.Role
		if in.FullName != nil {
			user.FullName = *in.FullName
		}
		if in.Role != nil {
			user.Role = *in.Role
		}
		if err := entity.ValidateUser(user); err != nil {
			return err
		}
		if err := authorize(uc.log, actor, authz.ActionUpdate, userResource(user, changesRole)); err != nil {
			return err
		}
		user.UpdatedAt = time.Now().UTC()
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	out := dto.FromUser(updated)
	return &out, nil
}

// Delete elimina un usuario del tenant. Un admin no puede eliminarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	err := uc.tx.Run(ctx, func(repos ports.Repos) error {
		user, err := repos.Users.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NotFound("usuario no encontrado")
		}
		if err := authorize(uc.log, actor, authz.ActionDelete, userResource(user, false)); err != nil {
			return err
		}
		deleted, err := repos.Users.Delete(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFound("usuario no encontrado")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("user_id", id).Msg("usuario eliminado")
	return nil
}

func userResource(u *entity.User, changesRole bool) authz.Resource {
	return authz.Resource{Kind: authz.KindUser, ID: u.ID, TenantID: u.TenantID, ChangesRole: changesRole}
}
