package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/application/intake"
	"github.com/pumpkinbots/partbot/pkg/logger"
)

// IntakeHandler expone el endpoint único del bot: POST /api/intake.
type IntakeHandler struct {
	uc  *intake.UseCase
	log zerolog.Logger
}

// NewIntakeHandler construye el handler.
func NewIntakeHandler(uc *intake.UseCase, log zerolog.Logger) *IntakeHandler {
	return &IntakeHandler{uc: uc, log: log}
}

// Handle godoc
// @Summary      Intake del bot (discordRequest, inventory, orderStatus, openOrders, health)
// @Tags         intake
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.IntakeRequest  true  "action + campos de la acción"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      500   {object}  dto.Envelope
// @Router       /api/intake [post]
func (h *IntakeHandler) Handle(c *fiber.Ctx) error {
	var in dto.IntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(&dto.EnvelopeError{
			Code:    dto.CodeInvalidParameter,
			Message: "Invalid JSON body",
		}, h.uc.Version(), uuid.NewString()))
	}
	in.TraceID = strings.TrimSpace(in.TraceID)
	if in.TraceID == "" {
		in.TraceID = uuid.NewString()
	}

	ctx := logger.ContextWithTraceID(c.UserContext(), in.TraceID)
	data, err := h.uc.Dispatch(ctx, in)
	if err == nil {
		return c.JSON(dto.OK(data, h.uc.Version(), in.TraceID))
	}

	var ee *dto.EnvelopeError
	if !errors.As(err, &ee) {
		log := logger.ForContext(ctx, h.log)
		log.Error().Err(err).
			Str("action", in.Action).
			Str("username", GetUsername(c)).
			Msg("intake failed")
		ee = &dto.EnvelopeError{Code: dto.CodeInternal, Message: "Internal error", Retryable: true}
	}
	return c.Status(envelopeStatus(ee.Code)).JSON(dto.Fail(ee, h.uc.Version(), in.TraceID))
}

// envelopeStatus código HTTP para cada código de error del sobre.
func envelopeStatus(code string) int {
	switch code {
	case dto.CodeInvalidAction, dto.CodeMissingParameter, dto.CodeInvalidParameter, dto.CodeValidation:
		return fiber.StatusBadRequest
	case dto.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case dto.CodeForbidden:
		return fiber.StatusForbidden
	case dto.CodeNotFound:
		return fiber.StatusNotFound
	case dto.CodeExternal:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
