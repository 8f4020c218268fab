package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

// Locals keys para el actor resuelto y el token crudo.
const (
	LocalActor = "actor"
	LocalToken = "token"
)

// ActorResolver reconstruye el Actor a partir del token. Lo implementa
// *auth.AuthUseCase.
type ActorResolver interface {
	Resolve(ctx context.Context, token string) (entity.Actor, error)
}

// AuthMiddleware valida el Bearer Token, resuelve el Actor y lo deja en c.Locals.
// Cualquier falla responde 401 con kind unauthenticated.
func AuthMiddleware(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return fail(c, err)
		}
		actor, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return fail(c, err)
		}
		c.Locals(LocalActor, actor)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// bearerToken extrae el token del header Authorization.
func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", domain.Unauthenticated("MISSING_TOKEN", "Authorization header requerido")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.Unauthenticated(domain.CodeInvalidToken, "formato: Bearer <token>")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", domain.Unauthenticated("MISSING_TOKEN", "token vacío")
	}
	return token, nil
}

// GetActor devuelve el Actor del contexto (después del middleware de auth).
func GetActor(c *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(entity.Actor)
	return actor, ok && actor.TenantID != ""
}

// mustActor devuelve el Actor o un error unauthenticated si no hay ninguno.
func mustActor(c *fiber.Ctx) (entity.Actor, error) {
	actor, ok := GetActor(c)
	if !ok {
		return entity.Actor{}, domain.Unauthenticated(domain.CodeInvalidToken, "sesión requerida")
	}
	return actor, nil
}
