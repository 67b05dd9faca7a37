package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/pumpkinbots/partbot/internal/application/analytics"
	"github.com/pumpkinbots/partbot/internal/application/auth"
	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/application/intake"
	"github.com/pumpkinbots/partbot/internal/application/orders"
	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/inventory"
	"github.com/pumpkinbots/partbot/internal/infrastructure/memory"
	"github.com/pumpkinbots/partbot/internal/infrastructure/pdf"
	"github.com/pumpkinbots/partbot/internal/infrastructure/tables"
	apphttp "github.com/pumpkinbots/partbot/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildServer arma el router completo sobre el almacén en memoria.
func buildServer(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewTableStore()
	require.NoError(t, tables.Provision(ctx, store))

	requests := tables.NewRequestRepository(store)
	orderRepo := tables.NewOrderRepository(store)
	reconciler := inventory.NewReconciler(tables.NewInventoryRepository(store))
	users := tables.NewUserRepository(store)

	queue := workflow.NewQueue(8, zerolog.Nop())
	t.Cleanup(queue.Close)
	engine := workflow.NewEngine(requests, orderRepo, reconciler, nil, queue, zerolog.Nop())

	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	_, err := authUC.RegisterUser(ctx, dto.RegisterRequest{Username: "mentor1", Password: "s3cret-pass", Role: entity.RoleMentor})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(zerolog.Nop())})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		IntakeUC:    intake.NewUseCase(requests, orderRepo, reconciler, nil, nil, queue, "v1.0.0", zerolog.Nop()),
		Engine:      engine,
		OrderPDF:    orders.NewPDFUseCase(orderRepo, requests, pdf.NewMarotoPDFGenerator(), "Team 1234"),
		DashboardUC: appanalytics.NewDashboardUseCase(requests, orderRepo, store, engine),
		JWTSecret:   testJWTSecret,
		Log:         zerolog.Nop(),
	})
	return app
}

// call envía una petición JSON y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func createRequest(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/intake", tokenForRole(t, entity.RoleBot), fiber.Map{
		"action":    "discordRequest",
		"requester": "jdoe",
		"subsystem": "Drive",
		"partName":  "Hex Bearing",
		"partLink":  "https://www.andymark.com/products/hex-bearing",
		"quantity":  2,
		"priority":  "High",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	env, err := dto.DecodeEnvelope(body)
	require.NoError(t, err)
	require.Equal(t, dto.StatusOK, env.Status)
	var created dto.CreatedRequest
	require.NoError(t, env.DecodeData(&created))
	require.NotEmpty(t, created.RequestID)
	return created.RequestID
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	app := buildServer(t)

	status, body := call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"username": "mentor1", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, status, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleMentor, out.User.Role)

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{"username": "mentor1", "password": "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister_SoloMentor(t *testing.T) {
	app := buildServer(t)
	in := fiber.Map{"username": "kid", "password": "password123"}

	status, _ := call(t, app, http.MethodPost, "/api/auth/register", tokenForRole(t, entity.RoleStudent), in)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/auth/register", tokenForRole(t, entity.RoleMentor), in)
	assert.Equal(t, http.StatusCreated, status, string(body))

	status, _ = call(t, app, http.MethodPost, "/api/auth/register", tokenForRole(t, entity.RoleMentor), in)
	assert.Equal(t, http.StatusConflict, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Intake
// ──────────────────────────────────────────────────────────────────────────────

func TestIntake_Errores(t *testing.T) {
	app := buildServer(t)
	bot := tokenForRole(t, entity.RoleBot)

	t.Run("acción desconocida", func(t *testing.T) {
		status, body := call(t, app, http.MethodPost, "/api/intake", bot, fiber.Map{"action": "launch", "traceId": "trace-1"})
		assert.Equal(t, http.StatusBadRequest, status)
		env, err := dto.DecodeEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, dto.StatusError, env.Status)
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.CodeInvalidAction, env.Error.Code)
		require.NotNil(t, env.Meta)
		assert.Equal(t, "trace-1", env.Meta.TraceID)
		assert.Equal(t, "v1.0.0", env.Meta.Version)
	})

	t.Run("JSON inválido", func(t *testing.T) {
		status, body := call(t, app, http.MethodPost, "/api/intake", bot, "{not json")
		assert.Equal(t, http.StatusBadRequest, status)
		env, err := dto.DecodeEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, dto.CodeInvalidParameter, env.Error.Code)
		assert.NotEmpty(t, env.Meta.TraceID)
	})

	t.Run("request inexistente", func(t *testing.T) {
		status, body := call(t, app, http.MethodPost, "/api/intake", bot, fiber.Map{"action": "orderStatus", "requestId": "REQ-NOPE"})
		assert.Equal(t, http.StatusNotFound, status)
		env, err := dto.DecodeEnvelope(body)
		require.NoError(t, err)
		assert.Equal(t, dto.CodeNotFound, env.Error.Code)
	})

	t.Run("sin token", func(t *testing.T) {
		status, _ := call(t, app, http.MethodPost, "/api/intake", "", fiber.Map{"action": "health"})
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Workflow + órdenes + dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujo_AprobarYDescargarOrden(t *testing.T) {
	app := buildServer(t)
	mentor := tokenForRole(t, entity.RoleMentor)
	id := createRequest(t, app)

	status, _ := call(t, app, http.MethodPost, "/api/requests/"+id+"/status", tokenForRole(t, entity.RoleStudent), fiber.Map{"status": "Approved"})
	assert.Equal(t, http.StatusForbidden, status, "solo un mentor cambia estados")

	status, body := call(t, app, http.MethodPost, "/api/requests/"+id+"/status", mentor, fiber.Map{"status": "Approved"})
	require.Equal(t, http.StatusOK, status, string(body))
	var res entity.TransitionResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	require.NotEmpty(t, res.OrderID)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+res.OrderID+"/pdf", nil)
	req.Header.Set("Authorization", mentor)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "purchase-order-"+res.OrderID+".pdf")

	status, body = call(t, app, http.MethodGet, "/api/dashboard/summary", mentor, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var summary dto.DashboardSummaryDTO
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.OpenOrders)
}

func TestChangeStatus_Errores(t *testing.T) {
	app := buildServer(t)
	mentor := tokenForRole(t, entity.RoleMentor)
	id := createRequest(t, app)

	status, _ := call(t, app, http.MethodPost, "/api/requests/REQ-NOPE/status", mentor, fiber.Map{"status": "Approved"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body := call(t, app, http.MethodPost, "/api/requests/"+id+"/status", mentor, fiber.Map{"status": "Launched"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), dto.CodeValidation)

	status, _ = call(t, app, http.MethodPost, "/api/requests/"+id+"/status", mentor, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, "/api/orders/ORD-NOPE/pdf", mentor, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCellEdit_Ignorado(t *testing.T) {
	app := buildServer(t)

	status, body := call(t, app, http.MethodPost, "/api/events/cell-edit", tokenForRole(t, entity.RoleBot), fiber.Map{
		"table": "Inventory", "row": 2, "column": "Status", "oldValue": "a", "newValue": "b",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var res entity.TransitionResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, entity.OutcomeIgnored, res.Outcome)
}

func TestPending_Endpoints(t *testing.T) {
	app := buildServer(t)
	mentor := tokenForRole(t, entity.RoleMentor)

	status, body := call(t, app, http.MethodGet, "/api/pending", mentor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"pending":[]}`, string(body))

	status, _ = call(t, app, http.MethodPost, "/api/pending/PND-NOPE/resolve", mentor, fiber.Map{"quantity": 3})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/pending/PND-NOPE/cancel", mentor, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPending_RecepcionSinUbicacion(t *testing.T) {
	app := buildServer(t)
	mentor := tokenForRole(t, entity.RoleMentor)
	id := createRequest(t, app)

	for _, s := range []string{"Approved", "Ordered"} {
		status, body := call(t, app, http.MethodPost, "/api/requests/"+id+"/status", mentor, fiber.Map{"status": s})
		require.Equal(t, http.StatusOK, status, string(body))
	}
	status, body := call(t, app, http.MethodPost, "/api/requests/"+id+"/status", mentor, fiber.Map{"status": "Received"})
	require.Equal(t, http.StatusOK, status, string(body))
	var res entity.TransitionResult
	require.NoError(t, json.Unmarshal(body, &res))
	require.Equal(t, entity.OutcomePending, res.Outcome)
	require.NotNil(t, res.Pending)
	assert.Equal(t, entity.PendingStorageLocation, res.Pending.Kind)

	status, body = call(t, app, http.MethodPost, "/api/pending/"+res.Pending.ID+"/resolve", mentor, fiber.Map{"location": "BIN-4"})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
}
