package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/application/ports"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/pkg/jwt"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// dummyHash se compara cuando el usuario no existe para que el tiempo de
// respuesta no revele qué emails están registrados.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskflow-dummy-password"), bcrypt.DefaultCost)

// AuthUseCase casos de uso de identidad: login, alta de organización,
// resolución del Actor a partir del token y logout.
type AuthUseCase struct {
	repos    ports.Repos
	tx       ports.TxRunner
	sessions ports.SessionStore // nil = tokens stateless, sin revocación
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(repos ports.Repos, tx ports.TxRunner, sessions ports.SessionStore, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{repos: repos, tx: tx, sessions: sessions, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// Resolve reconstruye el Actor a partir del token. El tenant y el usuario
// deben existir y el usuario debe pertenecer al tenant del token; el rol se
// lee del usuario almacenado. Cualquier fallo es Unauthenticated: nunca se
// devuelve un actor parcial.
func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (entity.Actor, error) {
	claims, err := uc.parse(token)
	if err != nil {
		return entity.Actor{}, err
	}

	tenant, err := uc.repos.Tenants.GetByID(ctx, claims.TenantID)
	if err != nil {
		return entity.Actor{}, fmt.Errorf("resolve tenant: %w", err)
	}
	if tenant == nil {
		return entity.Actor{}, domain.Unauthenticated(domain.CodeInvalidToken, "la organización de la sesión no existe")
	}
	user, err := uc.repos.Users.GetByID(ctx, tenant.ID, claims.UserID)
	if err != nil {
		return entity.Actor{}, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return entity.Actor{}, domain.Unauthenticated(domain.CodeInvalidToken, "el usuario de la sesión no existe")
	}

	if uc.sessions != nil {
		active, err := uc.sessions.Exists(ctx, claims.ID)
		if err != nil {
			return entity.Actor{}, domain.Transient("SESSION_STORE", "no se pudo verificar la sesión", err)
		}
		if !active {
			return entity.Actor{}, domain.Unauthenticated(domain.CodeSessionExpired, "la sesión fue cerrada o expiró")
		}
	}

	return entity.Actor{UserID: user.ID, TenantID: tenant.ID, Role: user.Role}, nil
}

// Me devuelve el usuario del actor resuelto.
func (uc *AuthUseCase) Me(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	user, err := uc.repos.Users.GetByID(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.Unauthenticated(domain.CodeInvalidToken, "el usuario de la sesión no existe")
	}
	out := dto.FromUser(user)
	return &out, nil
}

// Login verifica email/password y emite un token. Sin subdominio el email
// debe ser único entre organizaciones.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := entity.NormalizeEmail(in.Email)
	subdomain := entity.NormalizeSubdomain(in.TenantSubdomain)

	user, err := uc.findLoginUser(ctx, subdomain, email)
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(in.Password)); err != nil || user == nil {
		uc.log.Info().Str("subdomain", subdomain).Msg("login rechazado")
		return nil, invalidCredentials()
	}

	tok, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.TenantID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if uc.sessions != nil {
		if err := uc.sessions.Save(ctx, tok.SessionID, user.ID, user.TenantID, tok.ExpiresAt); err != nil {
			return nil, domain.Transient("SESSION_STORE", "no se pudo registrar la sesión", err)
		}
	}

	uc.log.Info().Str("tenant_id", user.TenantID).Str("user_id", user.ID).Msg("login")
	return &dto.LoginResponse{
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt,
		User:      dto.FromUser(user),
	}, nil
}

func (uc *AuthUseCase) findLoginUser(ctx context.Context, subdomain, email string) (*entity.User, error) {
	if subdomain != "" {
		tenant, err := uc.repos.Tenants.GetBySubdomain(ctx, subdomain)
		if err != nil {
			return nil, err
		}
		if tenant == nil {
			return nil, nil
		}
		return uc.repos.Users.GetByEmail(ctx, tenant.ID, email)
	}

	users, err := uc.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		return nil, nil
	case 1:
		return users[0], nil
	default:
		return nil, domain.Validation(domain.CodeTenantRequired, "el email existe en varias organizaciones: indique el subdominio")
	}
}

// RegisterTenant crea la organización y su primer tenant_admin en una sola
// transacción: o existen ambos o ninguno.
func (uc *AuthUseCase) RegisterTenant(ctx context.Context, in dto.RegisterTenantRequest) (*dto.RegisterTenantResponse, error) {
	now := time.Now().UTC()
	tenant := &entity.Tenant{
		ID:        uuid.New().String(),
		Name:      in.TenantName,
		Subdomain: entity.NormalizeSubdomain(in.Subdomain),
		CreatedAt: now,
	}
	if err := entity.ValidateTenant(tenant); err != nil {
		return nil, err
	}
	admin := &entity.User{
		ID:        uuid.New().String(),
		TenantID:  tenant.ID,
		FullName:  in.AdminFullName,
		Email:     entity.NormalizeEmail(in.AdminEmail),
		Role:      entity.RoleTenantAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.ValidateUser(admin); err != nil {
		return nil, err
	}
	if err := entity.ValidatePassword(in.AdminPassword); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin.PasswordHash = string(hash)

	err = uc.tx.Run(ctx, func(repos ports.Repos) error {
		existing, err := repos.Tenants.GetBySubdomain(ctx, tenant.Subdomain)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Validation(domain.CodeSubdomainTaken, "el subdominio ya está en uso")
		}
		if err := repos.Tenants.Create(ctx, tenant); err != nil {
			return err
		}
		return repos.Users.Create(ctx, admin)
	})
	if err != nil {
		return nil, fmt.Errorf("register tenant: %w", err)
	}

	uc.log.Info().Str("tenant_id", tenant.ID).Str("subdomain", tenant.Subdomain).Msg("organización registrada")
	return &dto.RegisterTenantResponse{
		Tenant: dto.FromTenant(tenant),
		Admin:  dto.FromUser(admin),
	}, nil
}

// Logout revoca la sesión del token. Un token ya inválido no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	claims, err := uc.parse(token)
	if err != nil {
		return nil
	}
	if uc.sessions == nil {
		return nil
	}
	if err := uc.sessions.Revoke(ctx, claims.ID); err != nil {
		return domain.Transient("SESSION_STORE", "no se pudo cerrar la sesión", err)
	}
	uc.log.Info().Str("tenant_id", claims.TenantID).Str("user_id", claims.UserID).Msg("logout")
	return nil
}

func (uc *AuthUseCase) parse(token string) (*jwt.Claims, error) {
	if token == "" {
		return nil, domain.Unauthenticated(domain.CodeInvalidToken, "token requerido")
	}
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return nil, domain.Unauthenticated(domain.CodeSessionExpired, "la sesión expiró")
		}
		return nil, domain.Unauthenticated(domain.CodeInvalidToken, "token inválido")
	}
	return claims, nil
}

func invalidCredentials() error {
	return domain.Unauthenticated(domain.CodeInvalidCredentials, "credenciales inválidas")
}
