package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/pumpkinbots/partbot/internal/application/analytics"
	"github.com/pumpkinbots/partbot/internal/application/auth"
	"github.com/pumpkinbots/partbot/internal/application/intake"
	"github.com/pumpkinbots/partbot/internal/application/orders"
	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	IntakeUC    *intake.UseCase
	Engine      *workflow.Engine
	OrderPDF    *orders.PDFUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	mentor := RequireRole(entity.RoleMentor)

	protected.Post("/auth/register", mentor, authHandler.Register)

	// Intake: bot de chat y miembros del equipo
	intakeHandler := NewIntakeHandler(deps.IntakeUC, deps.Log)
	protected.Post("/intake",
		RequireRole(entity.RoleBot, entity.RoleMentor, entity.RoleStudent),
		intakeHandler.Handle,
	)

	// Workflow: cambios de estado y entradas pendientes
	wf := NewWorkflowHandler(deps.Engine, deps.Log)
	protected.Post("/requests/:id/status", mentor, wf.ChangeStatus)
	protected.Post("/events/cell-edit", RequireRole(entity.RoleMentor, entity.RoleBot), wf.CellEdit)

	pending := protected.Group("/pending", mentor)
	pending.Get("/", wf.ListPending)
	pending.Post("/:id/resolve", wf.ResolvePending)
	pending.Post("/:id/cancel", wf.CancelPending)

	// Órdenes de compra
	if deps.OrderPDF != nil {
		orderHandler := NewOrderHandler(deps.OrderPDF)
		protected.Get("/orders/:id/pdf", mentor, orderHandler.DownloadPDF)
	}

	// Dashboard
	if deps.DashboardUC != nil {
		dashboardHandler := NewDashboardHandler(deps.DashboardUC)
		protected.Get("/dashboard/summary", mentor, dashboardHandler.GetSummary)
	}
}
