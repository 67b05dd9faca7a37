package tables

import (
	"context"
	"fmt"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
)

var _ repository.RequestRepository = (*RequestRepository)(nil)

// RequestRepository implementa repository.RequestRepository sobre la tabla Part Requests.
type RequestRepository struct {
	table *sheet.Table
}

// NewRequestRepository construye el repositorio de requests.
func NewRequestRepository(store repository.TableStore) *RequestRepository {
	return &RequestRepository{table: sheet.NewTable(store, sheet.RequestsSchema)}
}

// Create agrega el request y fija su RowIndex.
func (r *RequestRepository) Create(ctx context.Context, req *entity.Request) error {
	idx, err := r.table.AppendRow(ctx, requestRecord(req))
	if err != nil {
		return err
	}
	req.RowIndex = idx
	return nil
}

// GetByID busca por Request ID. Devuelve (nil, nil) si no existe.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	row, ok, err := r.table.FindRow(ctx, func(row sheet.Row) bool {
		return sameID(row.Value(sheet.ColRequestID), id)
	})
	if err != nil || !ok {
		return nil, err
	}
	return requestFromRow(*row), nil
}

// GetByRow devuelve el request de una fila física. (nil, nil) si la fila no existe.
func (r *RequestRepository) GetByRow(ctx context.Context, rowIndex int) (*entity.Request, error) {
	row, ok, err := r.table.RowAt(ctx, rowIndex)
	if err != nil || !ok {
		return nil, err
	}
	return requestFromRow(*row), nil
}

// List devuelve todos los requests con ID, en orden de fila.
func (r *RequestRepository) List(ctx context.Context) ([]*entity.Request, error) {
	rows, err := r.table.Rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Request, 0, len(rows))
	for _, row := range rows {
		if row.Value(sheet.ColRequestID) == "" {
			continue
		}
		out = append(out, requestFromRow(row))
	}
	return out, nil
}

// Save escribe en la fila solo los campos que cambiaron respecto de lo guardado.
// Las celdas que el usuario escribió y que no se modificaron quedan intactas.
func (r *RequestRepository) Save(ctx context.Context, req *entity.Request) error {
	next := requestRecord(req)
	row, ok, err := r.table.RowAt(ctx, req.RowIndex)
	if err != nil {
		return fmt.Errorf("leer request %s: %w", req.ID, err)
	}
	if ok {
		next = changedCells(requestRecord(requestFromRow(*row)), next)
	}
	if err := r.table.SetMany(ctx, req.RowIndex, next); err != nil {
		return fmt.Errorf("guardar request %s: %w", req.ID, err)
	}
	return nil
}

// SetStatus escribe solo la celda de estado.
func (r *RequestRepository) SetStatus(ctx context.Context, rowIndex int, status string) error {
	return r.table.Set(ctx, rowIndex, sheet.ColStatus, status)
}

// IsStatusColumn indica si el encabezado editado es la columna de estado.
func (r *RequestRepository) IsStatusColumn(ctx context.Context, header string) (bool, error) {
	col, ok, err := r.table.ColumnForHeader(ctx, header)
	if err != nil {
		return false, err
	}
	return ok && col == sheet.ColStatus, nil
}

// StatusHeader devuelve el encabezado físico de la columna de estado.
func (r *RequestRepository) StatusHeader(ctx context.Context) (string, error) {
	h, ok, err := r.table.HeaderFor(ctx, sheet.ColStatus)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", sheet.TableRequests, sheet.ErrColumnAbsent)
	}
	return h, nil
}

func requestRecord(req *entity.Request) map[sheet.Column]string {
	rec := map[sheet.Column]string{
		sheet.ColRequestID:         req.ID,
		sheet.ColRequester:         req.Requester,
		sheet.ColSubsystem:         req.Subsystem,
		sheet.ColPartName:          req.PartName,
		sheet.ColSKU:               req.SKU,
		sheet.ColPartLink:          req.PartLink,
		sheet.ColQuantity:          formatInt(req.Quantity),
		sheet.ColPriority:          req.Priority,
		sheet.ColNeededBy:          formatTime(req.NeededBy),
		sheet.ColInventoryOnHand:   req.InventoryOnHand,
		sheet.ColVendorStock:       req.VendorStock,
		sheet.ColEstUnitPrice:      formatDecimal(req.EstUnitPrice),
		sheet.ColTotalEstCost:      formatDecimal(req.TotalEstCost),
		sheet.ColMaxBudget:         formatDecimal(req.MaxBudget),
		sheet.ColBudgetStatus:      req.BudgetStatus,
		sheet.ColStatus:            string(req.Status),
		sheet.ColNotes:             req.Notes,
		sheet.ColExpeditedShipping: formatBool(req.ExpeditedShipping),
	}
	if !req.CreatedAt.IsZero() {
		rec[sheet.ColTimestamp] = formatTime(&req.CreatedAt)
	}
	return rec
}

func requestFromRow(row sheet.Row) *entity.Request {
	req := &entity.Request{
		RowIndex:          row.Index,
		ID:                row.Value(sheet.ColRequestID),
		Requester:         row.Value(sheet.ColRequester),
		Subsystem:         row.Value(sheet.ColSubsystem),
		PartName:          row.Value(sheet.ColPartName),
		SKU:               row.Value(sheet.ColSKU),
		PartLink:          row.Value(sheet.ColPartLink),
		Quantity:          parseInt(row.Value(sheet.ColQuantity)),
		Priority:          row.Value(sheet.ColPriority),
		NeededBy:          parseTime(row.Value(sheet.ColNeededBy)),
		InventoryOnHand:   row.Value(sheet.ColInventoryOnHand),
		VendorStock:       row.Value(sheet.ColVendorStock),
		EstUnitPrice:      parseDecimal(row.Value(sheet.ColEstUnitPrice)),
		TotalEstCost:      parseDecimal(row.Value(sheet.ColTotalEstCost)),
		MaxBudget:         parseDecimal(row.Value(sheet.ColMaxBudget)),
		BudgetStatus:      row.Value(sheet.ColBudgetStatus),
		Notes:             row.Value(sheet.ColNotes),
		ExpeditedShipping: parseBool(row.Value(sheet.ColExpeditedShipping)),
	}
	if t := parseTime(row.Value(sheet.ColTimestamp)); t != nil {
		req.CreatedAt = *t
	}
	raw := row.Value(sheet.ColStatus)
	if st, ok := entity.ParseRequestStatus(raw); ok {
		req.Status = st
	} else {
		req.Status = entity.RequestStatus(raw)
	}
	return req
}
