package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// ChangeStatusRequest cuerpo de POST /api/requests/:id/status.
type ChangeStatusRequest struct {
	Status string                 `json:"status"`
	Input  entity.TransitionInput `json:"input"`
}

// CellEditRequest cuerpo de POST /api/events/cell-edit: evento crudo del host de la tabla.
type CellEditRequest struct {
	Table      string                 `json:"table"`
	Row        int                    `json:"row"`
	Column     string                 `json:"column"`
	OldValue   string                 `json:"oldValue"`
	NewValue   string                 `json:"newValue"`
	NumRows    int                    `json:"numRows"`
	NumColumns int                    `json:"numColumns"`
	Input      entity.TransitionInput `json:"input"`
}

// WorkflowHandler expone la máquina de estados: cambios de estado y entradas pendientes.
type WorkflowHandler struct {
	engine *workflow.Engine
	log    zerolog.Logger
}

// NewWorkflowHandler construye el handler.
func NewWorkflowHandler(engine *workflow.Engine, log zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{engine: engine, log: log}
}

// ChangeStatus godoc
// @Summary      Cambiar el estado de un Request
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true  "Request ID"
// @Param        body  body  ChangeStatusRequest  true  "status + datos del revisor"
// @Success      200   {object}  entity.TransitionResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/status [post]
func (h *WorkflowHandler) ChangeStatus(c *fiber.Ctx) error {
	var in ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeMissingParameter, Message: "status es requerido"})
	}
	res, err := h.engine.ChangeStatus(c.UserContext(), c.Params("id"), in.Status, in.Input)
	if err != nil {
		return writeError(c, err)
	}
	h.log.Info().
		Str("username", GetUsername(c)).
		Str("request_id", res.RequestID).
		Str("outcome", res.Outcome).
		Msg("status change via api")
	return c.JSON(res)
}

// CellEdit godoc
// @Summary      Evento de edición de celda
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  CellEditRequest  true  "evento"
// @Success      200   {object}  entity.TransitionResult
// @Router       /api/events/cell-edit [post]
func (h *WorkflowHandler) CellEdit(c *fiber.Ctx) error {
	var in CellEditRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.HandleEdit(c.UserContext(), entity.CellEdit{
		Table:      in.Table,
		RowIndex:   in.Row,
		Column:     in.Column,
		OldValue:   in.OldValue,
		NewValue:   in.NewValue,
		NumRows:    in.NumRows,
		NumColumns: in.NumColumns,
	}, in.Input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ListPending GET /api/pending: transiciones esperando un dato.
func (h *WorkflowHandler) ListPending(c *fiber.Ctx) error {
	items := h.engine.Pending()
	if items == nil {
		items = []entity.PendingInput{}
	}
	return c.JSON(fiber.Map{"pending": items})
}

// ResolvePending godoc
// @Summary      Completar una transición pendiente
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                  true  "Pending ID"
// @Param        body  body  entity.TransitionInput  true  "quantity y/o location"
// @Success      200   {object}  entity.TransitionResult
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pending/{id}/resolve [post]
func (h *WorkflowHandler) ResolvePending(c *fiber.Ctx) error {
	var in entity.TransitionInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.ResolvePending(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// CancelPending POST /api/pending/:id/cancel: descarta la transición pendiente.
func (h *WorkflowHandler) CancelPending(c *fiber.Ctx) error {
	res, err := h.engine.CancelPending(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
