package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/inventory"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
	"github.com/pumpkinbots/partbot/internal/infrastructure/memory"
	"github.com/pumpkinbots/partbot/internal/infrastructure/tables"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type recordingAnnouncer struct {
	mu       sync.Mutex
	approved []string
	denied   map[string]string
}

func (a *recordingAnnouncer) RequestApproved(_ context.Context, req *entity.Request, order *entity.Order) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.approved = append(a.approved, req.ID+"/"+order.ID)
}

func (a *recordingAnnouncer) RequestDenied(_ context.Context, req *entity.Request, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.denied == nil {
		a.denied = map[string]string{}
	}
	a.denied[req.ID] = reason
}

type fixture struct {
	store     *memory.TableStore
	engine    *workflow.Engine
	requests  *tables.RequestRepository
	orders    *tables.OrderRepository
	inv       *tables.InventoryRepository
	announcer *recordingAnnouncer
}

var fixedNow = time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewTableStore()
	require.NoError(t, tables.Provision(ctx, store))

	f := fixture{
		store:     store,
		requests:  tables.NewRequestRepository(store),
		orders:    tables.NewOrderRepository(store),
		inv:       tables.NewInventoryRepository(store),
		announcer: &recordingAnnouncer{},
	}
	queue := workflow.NewQueue(8, zerolog.Nop())
	t.Cleanup(queue.Close)
	f.engine = workflow.NewEngine(f.requests, f.orders, inventory.NewReconciler(f.inv), f.announcer, queue, zerolog.Nop())
	f.engine.SetClock(func() time.Time { return fixedNow })
	return f
}

func (f fixture) seed(t *testing.T, req *entity.Request) *entity.Request {
	t.Helper()
	if req.Status == "" {
		req.Status = entity.StatusUnderReview
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
	return req
}

// edit simula al revisor escribiendo el nuevo estado en la celda antes del evento.
func (f fixture) edit(t *testing.T, req *entity.Request, to entity.RequestStatus, in entity.TransitionInput) entity.TransitionResult {
	t.Helper()
	ctx := context.Background()
	current, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NoError(t, f.requests.SetStatus(ctx, req.RowIndex, string(to)))
	res, err := f.engine.HandleEdit(ctx, entity.CellEdit{
		Table:    sheet.TableRequests,
		RowIndex: req.RowIndex,
		Column:   "Request Status",
		OldValue: string(current.Status),
		NewValue: string(to),
	}, in)
	require.NoError(t, err)
	return res
}

func (f fixture) reload(t *testing.T, id string) *entity.Request {
	t.Helper()
	req, err := f.requests.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, req)
	return req
}

// cell devuelve el texto crudo de una celda de Part Requests.
func (f fixture) cell(t *testing.T, row int, header string) string {
	t.Helper()
	ctx := context.Background()
	names, err := f.store.Header(ctx, sheet.TableRequests)
	require.NoError(t, err)
	rows, err := f.store.Rows(ctx, sheet.TableRequests)
	require.NoError(t, err)
	for i, h := range names {
		if h == header {
			return rows[row][i]
		}
	}
	t.Fatalf("columna %q no existe", header)
	return ""
}

// writeRaw escribe texto libre en celdas de Part Requests, como una persona en la hoja.
func (f fixture) writeRaw(t *testing.T, row int, cells map[string]string) {
	t.Helper()
	ctx := context.Background()
	names, err := f.store.Header(ctx, sheet.TableRequests)
	require.NoError(t, err)
	updates := map[int]string{}
	for i, h := range names {
		if v, ok := cells[h]; ok {
			updates[i] = v
		}
	}
	require.Len(t, updates, len(cells))
	require.NoError(t, f.store.UpdateCells(ctx, sheet.TableRequests, row, updates))
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtro de eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestHandleEdit_Ignorados(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-IGN00001", PartName: "Gear"})
	ctx := context.Background()

	cases := []struct {
		name string
		edit entity.CellEdit
	}{
		{"otra tabla", entity.CellEdit{Table: sheet.TableOrders, RowIndex: req.RowIndex, Column: "Request Status", OldValue: "Under Review", NewValue: "Approved"}},
		{"otra columna", entity.CellEdit{Table: sheet.TableRequests, RowIndex: req.RowIndex, Column: "Mentor Notes", OldValue: "", NewValue: "hola"}},
		{"rango", entity.CellEdit{Table: sheet.TableRequests, RowIndex: req.RowIndex, Column: "Request Status", OldValue: "Under Review", NewValue: "Approved", NumRows: 3}},
		{"sin cambio", entity.CellEdit{Table: sheet.TableRequests, RowIndex: req.RowIndex, Column: "Request Status", OldValue: "Approved", NewValue: " Approved "}},
		{"fila vacía", entity.CellEdit{Table: sheet.TableRequests, RowIndex: 99, Column: "Request Status", OldValue: "Under Review", NewValue: "Approved"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.engine.HandleEdit(ctx, tc.edit, entity.TransitionInput{})
			require.NoError(t, err)
			assert.Equal(t, entity.OutcomeIgnored, res.Outcome)
		})
	}

	orders, err := f.orders.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approved
// ──────────────────────────────────────────────────────────────────────────────

func TestApproved_CreaOrdenYNotifica(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{
		ID: "REQ-APR00001", PartName: "NEO Vortex", SKU: "REV-21-1652", Quantity: 4,
		PartLink: "https://www.revrobotics.com/rev-21-1652/", EstUnitPrice: dec("35.00"),
		ExpeditedShipping: true,
	})

	res := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	require.NotEmpty(t, res.OrderID)

	order, err := f.orders.GetByID(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, []string{"REQ-APR00001"}, order.IncludedRequestIDs)
	assert.Equal(t, "REV Robotics", order.Vendor)
	assert.Equal(t, entity.OrderAwaitingPurchase, order.Status)
	assert.Equal(t, entity.ShippingExpedited, order.ShippingMethod)
	assert.Equal(t, 4, order.Quantity)
	require.NotNil(t, order.TotalCost)
	assert.Equal(t, "140", order.TotalCost.String())

	got := f.reload(t, req.ID)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Contains(t, got.Notes, "[2026-02-14 18:30] approved: order "+order.ID)
	assert.Equal(t, []string{"REQ-APR00001/" + order.ID}, f.announcer.approved)
}

func TestApproved_SinIdentidadSeRevierte(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-APR00002", Quantity: 1})

	res := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.StatusUnderReview, res.Status)

	assert.Equal(t, entity.StatusUnderReview, f.reload(t, req.ID).Status)
	orders, err := f.orders.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.announcer.approved)
}

func TestApproved_EntregaDuplicadaNoCreaSegundaOrden(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-APR00003", PartName: "Bearing", Quantity: 2})
	ctx := context.Background()

	first := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})
	require.Equal(t, entity.OutcomeApplied, first.Outcome)

	// Reentrega del mismo evento (p. ej. el host reintenta el trigger).
	res, err := f.engine.HandleEdit(ctx, entity.CellEdit{
		Table: sheet.TableRequests, RowIndex: req.RowIndex, Column: "Request Status",
		OldValue: "Under Review", NewValue: "Approved",
	}, entity.TransitionInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeNoop, res.Outcome)
	assert.Equal(t, first.OrderID, res.OrderID)

	orders, err := f.orders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Len(t, f.announcer.approved, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ordered
// ──────────────────────────────────────────────────────────────────────────────

func TestOrdered_ActualizaOrden(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-ORD00001", PartName: "Belt", Quantity: 1})
	approved := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})

	res := f.edit(t, req, entity.StatusOrdered, entity.TransitionInput{Tracking: "1Z999"})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)

	order, err := f.orders.GetByID(context.Background(), approved.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderOrdered, order.Status)
	assert.Equal(t, "1Z999", order.Tracking)
	require.NotNil(t, order.OrderDate)
	assert.True(t, order.OrderDate.Equal(fixedNow))
}

func TestOrdered_SinOrdenNoHaceNada(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-ORD00002", PartName: "Belt", Status: entity.StatusApproved})

	res := f.edit(t, req, entity.StatusOrdered, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeNoop, res.Outcome)
	assert.Equal(t, entity.StatusOrdered, f.reload(t, req.ID).Status, "no se revierte")
}

// ──────────────────────────────────────────────────────────────────────────────
// Received
// ──────────────────────────────────────────────────────────────────────────────

func TestReceived_CantidadDesdeLaOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-RCV00001", SKU: "am-0042", Status: entity.StatusOrdered})
	require.NoError(t, f.orders.Create(ctx, &entity.Order{
		ID: "ORD-RCV00001", IncludedRequestIDs: []string{"REQ-RCV00001"}, Vendor: "AndyMark",
		PartName: "Gear 42T", SKU: "am-0042", Quantity: 5, Status: entity.OrderOrdered,
	}))

	res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{Location: "BIN-A1"})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.Equal(t, "ORD-RCV00001", res.OrderID)

	got := f.reload(t, req.ID)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "Gear 42T", got.PartName)
	assert.Equal(t, "5 on hand (BIN-A1)", got.InventoryOnHand)

	order, err := f.orders.GetByID(ctx, "ORD-RCV00001")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReceived, order.Status)
	require.NotNil(t, order.ReceivedDate)

	rows, err := f.inv.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "am-0042", rows[0].SKU)
	assert.Equal(t, 5, rows[0].Quantity)
	assert.Equal(t, "AndyMark", rows[0].Vendor)
}

func TestReceived_SumaAlBinExistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.inv.Append(ctx, entity.InventoryRow{SKU: "WCP-0123", Name: "Spacer", Location: "BIN-7", Quantity: 10}))
	require.NoError(t, f.inv.Append(ctx, entity.InventoryRow{SKU: "wcp-0123", Name: "Spacer", Location: "RACK-2", Quantity: 3}))
	req := f.seed(t, &entity.Request{ID: "REQ-RCV00002", SKU: "WCP-0123", Quantity: 4, Status: entity.StatusOrdered})

	res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{Location: "bin-7"})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)

	rows, err := f.inv.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 14, rows[0].Quantity)
	assert.Equal(t, "17 on hand (BIN-7, RACK-2)", f.reload(t, req.ID).InventoryOnHand)
}

func TestReceived_SinCantidadQuedaPendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-RCV00003", PartName: "Hex Shaft", Status: entity.StatusOrdered})

	res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{Location: "SHELF-1"})
	require.Equal(t, entity.OutcomePending, res.Outcome)
	require.NotNil(t, res.Pending)
	assert.Equal(t, entity.PendingQuantity, res.Pending.Kind)
	assert.Len(t, f.engine.Pending(), 1)

	_, err := f.engine.ResolvePending(ctx, res.Pending.ID, entity.TransitionInput{Quantity: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	done, err := f.engine.ResolvePending(ctx, res.Pending.ID, entity.TransitionInput{Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeApplied, done.Outcome)
	assert.Empty(t, f.engine.Pending())

	got := f.reload(t, req.ID)
	assert.Equal(t, 2, got.Quantity, "la respuesta se persiste en el Request")
	rows, err := f.inv.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hex Shaft", rows[0].SKU)
	assert.Equal(t, "SHELF-1", rows[0].Location)
}

func TestReceived_SinUbicacionContinuaDespues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-RCV00004", SKU: "am-0100", Quantity: 3, Status: entity.StatusOrdered})
	require.NoError(t, f.orders.Create(ctx, &entity.Order{
		ID: "ORD-RCV00004", IncludedRequestIDs: []string{"REQ-RCV00004"}, Vendor: "AndyMark", Quantity: 3,
	}))

	res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{})
	require.Equal(t, entity.OutcomePending, res.Outcome)
	assert.Equal(t, entity.PendingStorageLocation, res.Pending.Kind)

	order, err := f.orders.GetByID(ctx, "ORD-RCV00004")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderReceived, order.Status, "la orden se recibe aunque falte la ubicación")
	rows, err := f.inv.Rows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	done, err := f.engine.ResolvePending(ctx, res.Pending.ID, entity.TransitionInput{Location: "BIN-9"})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeApplied, done.Outcome)
	assert.Equal(t, "ORD-RCV00004", done.OrderID)

	rows, err = f.inv.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Quantity)
	assert.Equal(t, "AndyMark", rows[0].Vendor)
}

func TestReceived_IdentidadSinteticaDesdeElEnlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{
		ID: "REQ-RCV00005", Quantity: 1, Status: entity.StatusOrdered,
		PartLink: "https://www.example.com/shop/pivot-block",
	})

	res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{Location: "BIN-3"})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)

	got := f.reload(t, req.ID)
	assert.Equal(t, "Pivot Block", got.PartName)
	assert.Regexp(t, `^LINK-[0-9A-F]{8}$`, got.SKU)
	rows, err := f.inv.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, got.SKU, rows[0].SKU)
}

func TestCancelPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("cantidad revierte el estado", func(t *testing.T) {
		req := f.seed(t, &entity.Request{ID: "REQ-CNL00001", PartName: "Wheel", Status: entity.StatusOrdered})
		res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{})
		require.Equal(t, entity.OutcomePending, res.Outcome)

		cancelled, err := f.engine.CancelPending(ctx, res.Pending.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusOrdered, cancelled.Status)
		assert.Equal(t, entity.StatusOrdered, f.reload(t, req.ID).Status)
	})

	t.Run("ubicación mantiene Received", func(t *testing.T) {
		req := f.seed(t, &entity.Request{ID: "REQ-CNL00002", PartName: "Wheel", Quantity: 2, Status: entity.StatusOrdered})
		res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{})
		require.Equal(t, entity.PendingStorageLocation, res.Pending.Kind)

		cancelled, err := f.engine.CancelPending(ctx, res.Pending.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusReceived, cancelled.Status)
		got := f.reload(t, req.ID)
		assert.Equal(t, entity.StatusReceived, got.Status)
		assert.Contains(t, got.Notes, "storage location not provided")
	})

	t.Run("id desconocido", func(t *testing.T) {
		_, err := f.engine.CancelPending(ctx, "PND-NOPE")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Denied, terminales y consultivos
// ──────────────────────────────────────────────────────────────────────────────

func TestDenied_SinMotivoVuelveARevision(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-DEN00001", PartName: "Gizmo", Status: entity.StatusSubmitted})

	res := f.edit(t, req, entity.StatusDenied, entity.TransitionInput{Reason: "   "})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)

	got := f.reload(t, req.ID)
	assert.Equal(t, entity.StatusUnderReview, got.Status)
	assert.Empty(t, got.Notes)
	assert.Empty(t, f.announcer.denied)
}

func TestDenied_ConMotivo(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-DEN00002", PartName: "Gizmo"})

	res := f.edit(t, req, entity.StatusDenied, entity.TransitionInput{Reason: "ya hay en stock"})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.Contains(t, f.reload(t, req.ID).Notes, "denied: ya hay en stock")
	assert.Equal(t, "ya hay en stock", f.announcer.denied["REQ-DEN00002"])
}

func TestDenied_DespuesDeOrdenadoSeRechaza(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-DEN00003", PartName: "Gizmo", Status: entity.StatusOrdered})

	res := f.edit(t, req, entity.StatusDenied, entity.TransitionInput{Reason: "tarde"})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.StatusOrdered, f.reload(t, req.ID).Status)
}

func TestComplete_EsTerminal(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-CMP00001", PartName: "Gizmo", Status: entity.StatusReceived})

	res := f.edit(t, req, entity.StatusComplete, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.Contains(t, f.reload(t, req.ID).Notes, "complete: archived")

	back := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeRejected, back.Outcome)
	assert.Equal(t, entity.StatusComplete, f.reload(t, req.ID).Status)

	hold := f.edit(t, req, entity.StatusOnHold, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeApplied, hold.Outcome)
}

func TestHandleEdit_EstadoDesconocidoSeRevierte(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-UNK00001", PartName: "Gizmo"})

	res := f.edit(t, req, entity.RequestStatus("Shipped-ish"), entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.StatusUnderReview, f.reload(t, req.ID).Status)
}

func TestChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-CHG00001", PartName: "Gizmo"})

	res, err := f.engine.ChangeStatus(ctx, "req-chg00001", "approved", entity.TransitionInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.Equal(t, entity.StatusApproved, f.reload(t, req.ID).Status)

	_, err = f.engine.ChangeStatus(ctx, "REQ-MISSING", "Approved", entity.TransitionInput{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.engine.ChangeStatus(ctx, req.ID, "Lost", entity.TransitionInput{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos escritos a mano
// ──────────────────────────────────────────────────────────────────────────────

func TestTransiciones_ConservanCeldasLibres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-RAW00001", PartName: "Gizmo", SKU: "am-0001"})
	f.writeRaw(t, req.RowIndex, map[string]string{
		"Needed By":  "next Friday",
		"Max Budget": "about $50",
		"Quantity":   "2 packs",
	})

	res, err := f.engine.ChangeStatus(ctx, req.ID, "Approved", entity.TransitionInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.Equal(t, "next Friday", f.cell(t, req.RowIndex, "Needed By"))
	assert.Equal(t, "about $50", f.cell(t, req.RowIndex, "Max Budget"))
	assert.Equal(t, "2 packs", f.cell(t, req.RowIndex, "Quantity"))
	assert.Equal(t, "Approved", f.cell(t, req.RowIndex, "Request Status"))

	res, err = f.engine.ChangeStatus(ctx, req.ID, "Received", entity.TransitionInput{Quantity: 2, Location: "BIN-9"})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.Equal(t, "next Friday", f.cell(t, req.RowIndex, "Needed By"))
	assert.Equal(t, "about $50", f.cell(t, req.RowIndex, "Max Budget"))
	assert.Equal(t, "2", f.cell(t, req.RowIndex, "Quantity"), "la recepción completa la cantidad")
	assert.Contains(t, f.cell(t, req.RowIndex, "Mentor Notes"), "received: qty 2 into BIN-9")
}

// ──────────────────────────────────────────────────────────────────────────────
// On Hold
// ──────────────────────────────────────────────────────────────────────────────

func TestOnHold_NoReabreUnRequestDenegado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-HLD00001", PartName: "Gizmo"})

	assert.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusDenied, entity.TransitionInput{Reason: "duplicado"}).Outcome)
	assert.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusOnHold, entity.TransitionInput{}).Outcome)

	res := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.StatusOnHold, f.reload(t, req.ID).Status)

	orders, err := f.orders.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.announcer.approved)
}

func TestOnHold_NoPermiteDenegarDespuesDeOrdenado(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-HLD00002", PartName: "Gizmo", Quantity: 1})

	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusApproved, entity.TransitionInput{}).Outcome)
	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusOrdered, entity.TransitionInput{Tracking: "1Z1"}).Outcome)
	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusOnHold, entity.TransitionInput{}).Outcome)

	res := f.edit(t, req, entity.StatusDenied, entity.TransitionInput{Reason: "ya no hace falta"})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.StatusOnHold, f.reload(t, req.ID).Status)
	assert.Empty(t, f.announcer.denied)
}

func TestDenied_OrdenYaCompradaSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-HLD00003", PartName: "Gizmo"})
	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusApproved, entity.TransitionInput{}).Outcome)

	// La orden se marcó comprada directamente en la tabla de órdenes.
	order, err := f.orders.FindByRequestID(ctx, req.ID)
	require.NoError(t, err)
	order.Status = entity.OrderOrdered
	require.NoError(t, f.orders.Save(ctx, order))

	res := f.edit(t, req, entity.StatusDenied, entity.TransitionInput{Reason: "tarde"})
	assert.Equal(t, entity.OutcomeRejected, res.Outcome)
	assert.Equal(t, entity.StatusApproved, f.reload(t, req.ID).Status)
}

func TestOnHold_ReanudarNoRepiteEfectos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.seed(t, &entity.Request{ID: "REQ-HLD00004", PartName: "Bracket", SKU: "BRK-1", Quantity: 3})

	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusReceived, entity.TransitionInput{Location: "BIN-2"}).Outcome)
	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusOnHold, entity.TransitionInput{}).Outcome)

	res := f.edit(t, req, entity.StatusReceived, entity.TransitionInput{Location: "BIN-2"})
	assert.Equal(t, entity.OutcomeNoop, res.Outcome)
	assert.Equal(t, entity.StatusReceived, f.reload(t, req.ID).Status)

	rows, err := f.inv.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Quantity)
}

func TestOnHold_DesdeRevisionSigueAvanzando(t *testing.T) {
	f := newFixture(t)
	req := f.seed(t, &entity.Request{ID: "REQ-HLD00005", PartName: "Gizmo"})

	require.Equal(t, entity.OutcomeApplied, f.edit(t, req, entity.StatusOnHold, entity.TransitionInput{}).Outcome)
	res := f.edit(t, req, entity.StatusApproved, entity.TransitionInput{})
	assert.Equal(t, entity.OutcomeApplied, res.Outcome)
	assert.NotEmpty(t, res.OrderID)
}

func TestLastAuditedStatus(t *testing.T) {
	notes := "[2026-02-01 10:00] requester: urgente\n[2026-02-02 11:00] approved: order ORD-1 created\n[2026-02-03 09:00] denied: duplicado\nnota libre: approved"
	st, ok := entity.LastAuditedStatus(notes)
	require.True(t, ok)
	assert.Equal(t, entity.StatusDenied, st)

	_, ok = entity.LastAuditedStatus("[2026-02-01 10:00] requester: urgente")
	assert.False(t, ok)
}
