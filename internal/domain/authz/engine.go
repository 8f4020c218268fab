// Package authz centraliza la decisión de autorización: quién puede leer o
// mutar qué entidad. Es una función pura y determinista; el servidor la usa
// antes de tocar el Entity Store y el cliente la usa como pre-chequeo
// opcional (no autoritativo) antes de un round trip.
package authz

import (
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

// Action es la operación solicitada sobre un recurso.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind es el tipo de recurso.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
	KindUser    Kind = "user"
)

// Razones de denegación (estables, aptas para logs y respuestas).
const (
	ReasonTenantMismatch = "tenant_mismatch"
	ReasonAdminRequired  = "admin_required"
	ReasonSelfDelete     = "self_delete"
	ReasonNotOwner       = "not_owner"
	ReasonNoMatchingRule = "no_matching_rule"
)

// Resource describe el recurso sobre el que se decide.
//
// OwnerID es el creador del proyecto; para tareas es el creador del proyecto
// padre (las tareas heredan el permiso de borrado del proyecto).
// Para usuarios, ID es el usuario objetivo y ChangesRole marca un cambio de rol.
type Resource struct {
	Kind        Kind
	ID          string
	TenantID    string
	OwnerID     string
	ChangesRole bool
}

// Decision es el resultado de Authorize. Reason solo se llena al denegar.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Err convierte una denegación en un error de dominio Forbidden; nil si se permite.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.Forbidden("FORBIDDEN", denyMessage(d.Reason))
}

// Authorize decide (actor, acción, recurso) → permitir/denegar.
// Reglas en orden, gana la primera que aplica:
//  1. aislamiento de tenant absoluto;
//  2. usuarios: crear/borrar/cambiar rol requiere tenant_admin y un admin no puede borrarse a sí mismo;
//  3. proyectos y tareas: cualquier actor del tenant lee, crea y actualiza;
//     borrar solo el creador del proyecto o un tenant_admin;
//  4. por defecto, denegar.
func Authorize(actor entity.Actor, action Action, res Resource) Decision {
	if actor.TenantID == "" || actor.TenantID != res.TenantID {
		return deny(ReasonTenantMismatch)
	}

	switch res.Kind {
	case KindUser:
		return authorizeUser(actor, action, res)
	case KindProject, KindTask:
		return authorizeWork(actor, action, res)
	}
	return deny(ReasonNoMatchingRule)
}

func authorizeUser(actor entity.Actor, action Action, res Resource) Decision {
	switch action {
	case ActionRead:
		return allow()
	case ActionCreate:
		if !actor.IsAdmin() {
			return deny(ReasonAdminRequired)
		}
		return allow()
	case ActionDelete:
		if !actor.IsAdmin() {
			return deny(ReasonAdminRequired)
		}
		if res.ID == actor.UserID {
			return deny(ReasonSelfDelete)
		}
		return allow()
	case ActionUpdate:
		if res.ChangesRole && !actor.IsAdmin() {
			return deny(ReasonAdminRequired)
		}
		if actor.IsAdmin() || res.ID == actor.UserID {
			return allow()
		}
		return deny(ReasonAdminRequired)
	}
	return deny(ReasonNoMatchingRule)
}

func authorizeWork(actor entity.Actor, action Action, res Resource) Decision {
	switch action {
	case ActionRead, ActionCreate, ActionUpdate:
		return allow()
	case ActionDelete:
		// En tareas OwnerID es el creador del proyecto, no el de la tarea.
		// TODO: permitir también al creador de la tarea (Task.CreatedBy) cuando se
		// defina la propiedad por tarea.
		if actor.IsAdmin() || (res.OwnerID != "" && res.OwnerID == actor.UserID) {
			return allow()
		}
		return deny(ReasonNotOwner)
	}
	return deny(ReasonNoMatchingRule)
}

func denyMessage(reason string) string {
	switch reason {
	case ReasonTenantMismatch:
		return "el recurso no pertenece a su organización"
	case ReasonAdminRequired:
		return "se requiere rol de administrador"
	case ReasonSelfDelete:
		return "un administrador no puede eliminar su propia cuenta"
	case ReasonNotOwner:
		return "solo el creador del proyecto o un administrador puede eliminarlo"
	default:
		return "acción no permitida"
	}
}
