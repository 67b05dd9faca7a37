package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/pkg/logger"
)

// ErrorHandler manejador de último recurso de Fiber: registra el error completo con un
// trace id y responde INTERNAL_ERROR sin detalles internos.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: httpCode(fe.Code), Message: fe.Message})
		}
		traceID := logger.TraceIDFrom(c.UserContext())
		if traceID == "" {
			traceID = uuid.NewString()
		}
		log.Error().Err(err).
			Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    dto.CodeInternal,
			Message: "error interno (trace " + traceID + ")",
		})
	}
}

// writeError traduce errores de dominio a respuesta HTTP. Lo no reconocido sube al ErrorHandler.
func writeError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: ve.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: dto.CodeNotFound, Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: dto.CodeUnauthorized, Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: dto.CodeForbidden, Message: "cuenta inactiva o sin acceso"})
	case errors.Is(err, workflow.ErrQueueClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "el servicio se está deteniendo"})
	}
	return err
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return dto.CodeInvalidParameter
	case fiber.StatusUnauthorized:
		return dto.CodeUnauthorized
	case fiber.StatusForbidden:
		return dto.CodeForbidden
	case fiber.StatusNotFound:
		return dto.CodeNotFound
	}
	return dto.CodeInternal
}
