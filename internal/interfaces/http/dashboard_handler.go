package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/pumpkinbots/partbot/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el conteo de requests por estado y el gasto comprometido.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (statuses, open_orders, over_budget, committed_spend,
// pending_estimate, pending_inputs, date_label).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
