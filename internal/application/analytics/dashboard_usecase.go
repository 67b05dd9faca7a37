// Package analytics contiene el resumen de compras para el dashboard de los mentores.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
)

// ColumnSummer lo implementan los almacenes que pueden sumar una columna en el servidor
// (PostgreSQL). Los demás se suman en memoria.
type ColumnSummer interface {
	SumColumn(ctx context.Context, table string, col int) (decimal.Decimal, error)
}

// PendingCounter expone cuántas transiciones esperan un dato.
type PendingCounter interface {
	Pending() []entity.PendingInput
}

// DashboardUseCase genera el resumen de compras.
//
// Fuente de datos: repositorios de requests y órdenes (solo lectura).
type DashboardUseCase struct {
	requests repository.RequestRepository
	orders   repository.OrderRepository
	store    repository.TableStore
	pending  PendingCounter
	now      func() time.Time
}

// NewDashboardUseCase construye el caso de uso. store y pending pueden ser nil.
func NewDashboardUseCase(
	requests repository.RequestRepository,
	orders repository.OrderRepository,
	store repository.TableStore,
	pending PendingCounter,
) *DashboardUseCase {
	return &DashboardUseCase{requests: requests, orders: orders, store: store, pending: pending, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres lecturas en paralelo:
//  1. requests   → conteo por estado, sobre presupuesto, estimado pendiente
//  2. órdenes    → órdenes abiertas (y gasto si el almacén no suma)
//  3. SumColumn  → gasto comprometido calculado por el almacén
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	type requestsResult struct {
		list []*entity.Request
		err  error
	}
	type ordersResult struct {
		list []*entity.Order
		err  error
	}
	type spendResult struct {
		total decimal.Decimal
		ok    bool
		err   error
	}

	reqCh := make(chan requestsResult, 1)
	ordCh := make(chan ordersResult, 1)
	spendCh := make(chan spendResult, 1)

	go func() {
		list, err := uc.requests.List(ctx)
		reqCh <- requestsResult{list, err}
	}()
	go func() {
		list, err := uc.orders.List(ctx)
		ordCh <- ordersResult{list, err}
	}()
	go func() {
		total, ok, err := uc.serverSpend(ctx)
		spendCh <- spendResult{total, ok, err}
	}()

	reqs := <-reqCh
	ords := <-ordCh
	spend := <-spendCh

	if reqs.err != nil {
		return nil, fmt.Errorf("dashboard: requests: %w", reqs.err)
	}
	if ords.err != nil {
		return nil, fmt.Errorf("dashboard: órdenes: %w", ords.err)
	}
	if spend.err != nil {
		return nil, fmt.Errorf("dashboard: gasto: %w", spend.err)
	}

	out := &dto.DashboardSummaryDTO{
		CommittedSpend:  decimal.Zero,
		PendingEstimate: decimal.Zero,
		DateLabel:       uc.now().Format("January 2006"),
	}

	counts := map[entity.RequestStatus]int{}
	for _, r := range reqs.list {
		counts[r.Status]++
		if r.BudgetStatus == entity.BudgetOver {
			out.OverBudget++
		}
		if r.TotalEstCost != nil && awaitingPurchase(r.Status) {
			out.PendingEstimate = out.PendingEstimate.Add(*r.TotalEstCost)
		}
	}
	for _, s := range entity.AllRequestStatuses {
		out.Statuses = append(out.Statuses, dto.StatusCountDTO{Status: string(s), Count: counts[s]})
	}

	var memSpend decimal.Decimal
	for _, o := range ords.list {
		if o.IsOpen() {
			out.OpenOrders++
		}
		if o.TotalCost != nil {
			memSpend = memSpend.Add(*o.TotalCost)
		}
	}
	if spend.ok {
		out.CommittedSpend = spend.total.Round(2)
	} else {
		out.CommittedSpend = memSpend.Round(2)
	}
	out.PendingEstimate = out.PendingEstimate.Round(2)

	if uc.pending != nil {
		out.PendingInputs = len(uc.pending.Pending())
	}
	return out, nil
}

// serverSpend suma Total Cost en el almacén cuando este lo soporta.
func (uc *DashboardUseCase) serverSpend(ctx context.Context) (decimal.Decimal, bool, error) {
	summer, ok := uc.store.(ColumnSummer)
	if !ok {
		return decimal.Zero, false, nil
	}
	layout, err := sheet.NewTable(uc.store, sheet.OrdersSchema).Layout(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	col := layout.Index(sheet.ColTotalCost)
	if col == sheet.Absent {
		return decimal.Zero, false, nil
	}
	total, err := summer.SumColumn(ctx, sheet.TableOrders, col)
	if err != nil {
		return decimal.Zero, false, err
	}
	return total, true, nil
}

func awaitingPurchase(s entity.RequestStatus) bool {
	switch s {
	case entity.StatusSubmitted, entity.StatusUnderReview, entity.StatusApproved:
		return true
	}
	return false
}
