package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio de forma distinguible por máquina.
// Es lo que viaja en el campo "kind" del sobre de error HTTP.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"   // sin credencial o credencial expirada
	KindForbidden       Kind = "forbidden"         // denegado por el motor de autorización
	KindNotFound        Kind = "not_found"         // ausente o de otro tenant (indistinguible)
	KindValidation      Kind = "validation_failed" // violación de invariante
	KindConflict        Kind = "conflict"          // reconciliación obsoleta
	KindTransient       Kind = "transient"         // red / timeout; único reintentable
	KindInternal        Kind = "internal"
)

// Error es el error de dominio. Code es opcional y más específico que Kind
// (ej. "EMAIL_EXISTS"); Message es seguro para mostrar al actor.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is permite errors.Is(err, domain.ErrNotFound): compara por Kind y, si el
// objetivo tiene Code, también por Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinelas por tipo de error (usar con errors.Is).
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "sesión no válida o expirada"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "acceso denegado"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "recurso no encontrado"}
	ErrValidation      = &Error{Kind: KindValidation, Message: "entrada inválida"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflicto con el estado actual"}
	ErrTransient       = &Error{Kind: KindTransient, Message: "servicio no disponible temporalmente"}
)

// Códigos específicos usados por varias capas.
const (
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeSubdomainTaken     = "SUBDOMAIN_TAKEN"
	CodeStaleResponse      = "STALE_RESPONSE"
	CodeTimeout            = "TIMEOUT"
	CodeTenantRequired     = "TENANT_REQUIRED"
	CodeSelfDelete         = "SELF_DELETE"
)

// Unauthenticated construye un error de autenticación.
func Unauthenticated(code, message string) *Error {
	return &Error{Kind: KindUnauthenticated, Code: code, Message: message}
}

// Forbidden construye un error de autorización.
func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

// NotFound construye un error de recurso ausente.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: message}
}

// Validation construye un error de validación de invariantes.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Conflict construye un error de reconciliación obsoleta.
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Transient envuelve un fallo de red o timeout.
func Transient(code, message string, err error) *Error {
	return &Error{Kind: KindTransient, Code: code, Message: message, Err: err}
}

// KindOf devuelve el Kind del primer *Error en la cadena; KindInternal si no hay ninguno.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf devuelve el Code del primer *Error en la cadena.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable indica si el llamador puede reintentar la operación.
// El núcleo nunca reintenta por su cuenta.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
