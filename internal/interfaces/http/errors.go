package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain"
)

// LocalError guarda el error que originó una respuesta 5xx para el request logger.
const LocalError = "error"

// statusFor traduce el Kind del error de dominio a código HTTP.
// 401 solo para unauthenticated; los duplicados de validación van a 409.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindValidation:
		switch domain.CodeOf(err) {
		case domain.CodeEmailExists, domain.CodeSubdomainTaken:
			return fiber.StatusConflict
		}
		return fiber.StatusBadRequest
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindTransient:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// errorBody arma el sobre de error; los errores internos nunca exponen detalles.
func errorBody(err error) dto.ErrorResponse {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal {
		return dto.ErrorResponse{Kind: string(domain.KindInternal), Code: "INTERNAL", Message: "error interno del servidor"}
	}
	code := de.Code
	if code == "" {
		code = string(de.Kind)
	}
	msg := de.Message
	if msg == "" {
		msg = string(de.Kind)
	}
	return dto.ErrorResponse{Kind: string(de.Kind), Code: code, Message: msg}
}

// fail escribe el sobre de error correspondiente a err.
func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		c.Locals(LocalError, err)
	}
	return c.Status(status).JSON(errorBody(err))
}

// invalidBody respuesta estándar para un cuerpo JSON que no se pudo parsear.
func invalidBody(c *fiber.Ctx) error {
	return fail(c, domain.Validation("INVALID_BODY", "cuerpo inválido"))
}

// respond escribe el sobre de éxito {data, message?}.
func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(dto.Envelope{Data: data, Message: message})
}

// ErrorHandler maneja los errores que escapan de los handlers (rutas
// inexistentes, panics recuperados, límites de Fiber) con el mismo sobre.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := domain.KindInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			kind = domain.KindNotFound
		case fe.Code == fiber.StatusUnauthorized:
			kind = domain.KindUnauthenticated
		case fe.Code >= 400 && fe.Code < 500:
			kind = domain.KindValidation
		}
		if kind == domain.KindInternal {
			c.Locals(LocalError, err)
			return c.Status(fe.Code).JSON(errorBody(err))
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Kind: string(kind), Code: string(kind), Message: fe.Message})
	}
	return fail(c, err)
}
