package tables

import (
	"context"
	"fmt"
	"strings"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository implementa repository.OrderRepository sobre la tabla Orders.
type OrderRepository struct {
	table *sheet.Table
}

// NewOrderRepository construye el repositorio de órdenes.
func NewOrderRepository(store repository.TableStore) *OrderRepository {
	return &OrderRepository{table: sheet.NewTable(store, sheet.OrdersSchema)}
}

// Create agrega la orden y fija su RowIndex.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	idx, err := r.table.AppendRow(ctx, orderRecord(order))
	if err != nil {
		return err
	}
	order.RowIndex = idx
	return nil
}

// GetByID busca por Order ID. (nil, nil) si no existe.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	row, ok, err := r.table.FindRow(ctx, func(row sheet.Row) bool {
		return sameID(row.Value(sheet.ColOrderID), id)
	})
	if err != nil || !ok {
		return nil, err
	}
	return orderFromRow(*row), nil
}

// FindByRequestID devuelve la primera orden que incluye el request. (nil, nil) si ninguna.
func (r *OrderRepository) FindByRequestID(ctx context.Context, requestID string) (*entity.Order, error) {
	orders, err := r.ListByRequestID(ctx, requestID)
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return orders[0], nil
}

// ListByRequestID devuelve todas las órdenes que incluyen el request, en orden de fila.
func (r *OrderRepository) ListByRequestID(ctx context.Context, requestID string) ([]*entity.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entity.Order
	for _, o := range all {
		if o.Includes(requestID) {
			out = append(out, o)
		}
	}
	return out, nil
}

// List devuelve todas las órdenes con ID, en orden de fila.
func (r *OrderRepository) List(ctx context.Context) ([]*entity.Order, error) {
	rows, err := r.table.Rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Order, 0, len(rows))
	for _, row := range rows {
		if row.Value(sheet.ColOrderID) == "" {
			continue
		}
		out = append(out, orderFromRow(row))
	}
	return out, nil
}

// Save escribe en la fila solo los campos de la orden que cambiaron.
func (r *OrderRepository) Save(ctx context.Context, order *entity.Order) error {
	next := orderRecord(order)
	row, ok, err := r.table.RowAt(ctx, order.RowIndex)
	if err != nil {
		return fmt.Errorf("leer orden %s: %w", order.ID, err)
	}
	if ok {
		next = changedCells(orderRecord(orderFromRow(*row)), next)
	}
	if err := r.table.SetMany(ctx, order.RowIndex, next); err != nil {
		return fmt.Errorf("guardar orden %s: %w", order.ID, err)
	}
	return nil
}

func orderRecord(o *entity.Order) map[sheet.Column]string {
	return map[sheet.Column]string{
		sheet.ColOrderID:        o.ID,
		sheet.ColIncludedIDs:    strings.Join(o.IncludedRequestIDs, ", "),
		sheet.ColVendor:         o.Vendor,
		sheet.ColPartName:       o.PartName,
		sheet.ColSKU:            o.SKU,
		sheet.ColQuantity:       formatInt(o.Quantity),
		sheet.ColUnitPrice:      formatDecimal(o.UnitPrice),
		sheet.ColTotalCost:      formatDecimal(o.TotalCost),
		sheet.ColOrderDate:      formatTime(o.OrderDate),
		sheet.ColShippingMethod: o.ShippingMethod,
		sheet.ColTracking:       o.Tracking,
		sheet.ColETA:            formatTime(o.ETA),
		sheet.ColReceivedDate:   formatTime(o.ReceivedDate),
		sheet.ColStatus:         string(o.Status),
		sheet.ColNotes:          o.Notes,
	}
}

func orderFromRow(row sheet.Row) *entity.Order {
	return &entity.Order{
		RowIndex:           row.Index,
		ID:                 row.Value(sheet.ColOrderID),
		IncludedRequestIDs: entity.ParseRequestIDs(row.Value(sheet.ColIncludedIDs)),
		Vendor:             row.Value(sheet.ColVendor),
		PartName:           row.Value(sheet.ColPartName),
		SKU:                row.Value(sheet.ColSKU),
		Quantity:           parseInt(row.Value(sheet.ColQuantity)),
		UnitPrice:          parseDecimal(row.Value(sheet.ColUnitPrice)),
		TotalCost:          parseDecimal(row.Value(sheet.ColTotalCost)),
		OrderDate:          parseTime(row.Value(sheet.ColOrderDate)),
		ShippingMethod:     row.Value(sheet.ColShippingMethod),
		Tracking:           row.Value(sheet.ColTracking),
		ETA:                parseTime(row.Value(sheet.ColETA)),
		ReceivedDate:       parseTime(row.Value(sheet.ColReceivedDate)),
		Status:             entity.OrderStatus(row.Value(sheet.ColStatus)),
		Notes:              row.Value(sheet.ColNotes),
	}
}
