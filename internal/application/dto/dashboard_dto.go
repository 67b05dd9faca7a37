package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	// Requests por estado, en orden de ciclo de vida
	Statuses []StatusCountDTO `json:"statuses"`

	OpenOrders int `json:"open_orders"` // sin fecha de recepción y no canceladas
	OverBudget int `json:"over_budget"` // requests con Budget Status = Over Budget

	// Suma de Total Cost de todas las órdenes
	CommittedSpend decimal.Decimal `json:"committed_spend"`
	// Suma de Total Est. Cost de requests aún no ordenados (Submitted, Under Review, Approved)
	PendingEstimate decimal.Decimal `json:"pending_estimate"`

	PendingInputs int    `json:"pending_inputs"`
	DateLabel     string `json:"date_label"` // ej: "February 2026"
}

// StatusCountDTO cantidad de requests en un estado.
type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
