package usecase

import (
	"github.com/jhoicas/taskflow-api/internal/domain/authz"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// authorize consulta el motor y registra la denegación antes de devolverla
// como error Forbidden.
func authorize(log *logger.Logger, actor entity.Actor, action authz.Action, res authz.Resource) error {
	d := authz.Authorize(actor, action, res)
	if !d.Allowed {
		log.Warn().
			Str("tenant_id", actor.TenantID).
			Str("user_id", actor.UserID).
			Str("action", string(action)).
			Str("kind", string(res.Kind)).
			Str("resource_id", res.ID).
			Str("reason", d.Reason).
			Msg("acceso denegado")
	}
	return d.Err()
}

func componentLogger(log *logger.Logger, name string) *logger.Logger {
	if log == nil {
		log = logger.Nop()
	}
	return log.Component(name)
}
