package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

const internalErrorMessage = "erro interno do servidor"

// ok responde {"success": true, "data": data} con el status indicado.
func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.SuccessResponse{Success: true, Data: data})
}

// fail responde {"success": false, "message": msg}.
func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Message: msg})
}

// StatusFor traduce un error de dominio al código HTTP. Lo no reconocido es 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrParse):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLockTimeout):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError escribe el envoltorio de error. Los 500 se registran completos y el cliente
// solo recibe un mensaje genérico.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", GetRequestID(c)).
			Msg("erro não tratado")
		return fail(c, status, internalErrorMessage)
	}
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return fail(c, status, err.Error())
}

// ErrorHandler es el manejador de errores de Fiber: rutas inexistentes, cuerpos demasiado
// grandes y errores devueltos por handlers que no pasaron por respondError.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg := fe.Message
			if fe.Code == fiber.StatusNotFound {
				msg = "rota não encontrada"
			}
			return fail(c, fe.Code, msg)
		}
		return respondError(c, log, err)
	}
}
