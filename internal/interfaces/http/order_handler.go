package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pumpkinbots/partbot/internal/application/orders"
)

// OrderHandler sirve la orden de compra en PDF.
type OrderHandler struct {
	uc *orders.PDFUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.PDFUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// DownloadPDF godoc
// @Summary      Orden de compra en PDF
// @Tags         orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Order ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pdf [get]
func (h *OrderHandler) DownloadPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.DownloadPurchaseOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
