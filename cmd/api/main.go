// @title          partbot API
// @version        1.0
// @description    Gestión de compras de piezas del equipo FRC: intake del bot, ciclo de estados y órdenes.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/pumpkinbots/partbot/docs"
	appanalytics "github.com/pumpkinbots/partbot/internal/application/analytics"
	"github.com/pumpkinbots/partbot/internal/application/auth"
	"github.com/pumpkinbots/partbot/internal/application/enrichment"
	"github.com/pumpkinbots/partbot/internal/application/intake"
	"github.com/pumpkinbots/partbot/internal/application/notify"
	"github.com/pumpkinbots/partbot/internal/application/orders"
	"github.com/pumpkinbots/partbot/internal/application/ports"
	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain/inventory"
	infraai "github.com/pumpkinbots/partbot/internal/infrastructure/ai"
	infrapdf "github.com/pumpkinbots/partbot/internal/infrastructure/pdf"
	"github.com/pumpkinbots/partbot/internal/infrastructure/store"
	"github.com/pumpkinbots/partbot/internal/infrastructure/tables"
	"github.com/pumpkinbots/partbot/internal/infrastructure/web"
	"github.com/pumpkinbots/partbot/internal/infrastructure/webhook"
	httpRouter "github.com/pumpkinbots/partbot/internal/interfaces/http"
	"github.com/pumpkinbots/partbot/pkg/config"
	"github.com/pumpkinbots/partbot/pkg/logger"
	"github.com/pumpkinbots/partbot/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	tableStore, closer, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("abrir almacén de tablas")
	}
	defer closer.Close()

	if err := tables.Provision(ctx, tableStore); err != nil {
		log.Fatal().Err(err).Msg("aprovisionar tablas")
	}

	requestRepo := tables.NewRequestRepository(tableStore)
	orderRepo := tables.NewOrderRepository(tableStore)
	userRepo := tables.NewUserRepository(tableStore)
	reconciler := inventory.NewReconciler(tables.NewInventoryRepository(tableStore))

	// Notificaciones: webhook de compras y del solicitante (opcional).
	notifier := webhook.NewNotifier(cfg.Webhooks.ProcurementURL, cfg.Webhooks.RequesterURL, cfg.Webhooks.Timeout)
	dispatcher := notify.NewDispatcher(notifier, log.Component("notify"))

	// Cola serializada: único escritor de las tablas para eventos de estado y altas.
	queue := workflow.NewQueue(64, log.Component("queue"))
	engine := workflow.NewEngine(requestRepo, orderRepo, reconciler, dispatcher, queue, log.Component("workflow"))

	var pipeline *enrichment.Pipeline
	if cfg.Enrichment.Enabled {
		fetcher := web.NewPageFetcher(cfg.Enrichment.UserAgent, cfg.Enrichment.FetchTimeout, cfg.Enrichment.SnippetChars)
		pipeline = enrichment.NewPipeline(fetcher, newExtractor(cfg, log), requestRepo, reconciler, log.Component("enrichment"), cfg.AI.Timeout)
	}

	intakeUC := intake.NewUseCase(requestRepo, orderRepo, reconciler, pipeline, dispatcher, engine, cfg.App.Version, log.Component("intake"))
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	dashboardUC := appanalytics.NewDashboardUseCase(requestRepo, orderRepo, tableStore, engine)

	// PDF: orden de compra imprimible
	orderPDFUC := orders.NewPDFUseCase(orderRepo, requestRepo, infrapdf.NewMarotoPDFGenerator(), cfg.App.Team)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "partbot API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(intakeUC.Health())
	})
	app.Get("/metrics", metrics.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		IntakeUC:    intakeUC,
		Engine:      engine,
		OrderPDF:    orderPDFUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	queue.Close()

	log.Info().Msg("aplicación detenida")
}

// newExtractor elige el proveedor de extracción. Sin API key el pipeline usa solo el
// fallback estructural.
func newExtractor(cfg *config.Config, log *logger.Logger) ports.PartExtractor {
	switch cfg.AI.Provider {
	case config.AIProviderGemini:
		if cfg.AI.GeminiAPIKey != "" {
			return infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.Timeout)
		}
	default:
		if cfg.AI.AnthropicAPIKey != "" {
			return infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel, cfg.AI.Timeout)
		}
	}
	log.Warn().Str("provider", cfg.AI.Provider).Msg("sin API key de extracción; solo fallback estructural")
	return nil
}
