package tables

import (
	"context"
	"time"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
)

var _ repository.InventoryRepository = (*InventoryRepository)(nil)

// InventoryRepository implementa repository.InventoryRepository sobre la tabla Inventory.
type InventoryRepository struct {
	table *sheet.Table
	now   func() time.Time
}

// NewInventoryRepository construye el repositorio de inventario.
func NewInventoryRepository(store repository.TableStore) *InventoryRepository {
	return &InventoryRepository{table: sheet.NewTable(store, sheet.InventorySchema), now: time.Now}
}

// Rows devuelve todas las filas físicas, incluidas las que no tienen SKU.
func (r *InventoryRepository) Rows(ctx context.Context) ([]entity.InventoryRow, error) {
	rows, err := r.table.Rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.InventoryRow, len(rows))
	for i, row := range rows {
		out[i] = entity.InventoryRow{
			RowIndex:    row.Index,
			SKU:         row.Value(sheet.ColSKU),
			Vendor:      row.Value(sheet.ColVendor),
			Name:        row.Value(sheet.ColPartName),
			Location:    row.Value(sheet.ColLocation),
			Quantity:    parseInt(row.Value(sheet.ColQuantity)),
			LastUpdated: parseTime(row.Value(sheet.ColLastUpdated)),
		}
	}
	return out, nil
}

// Append agrega una fila física nueva.
func (r *InventoryRepository) Append(ctx context.Context, row entity.InventoryRow) error {
	now := r.now()
	_, err := r.table.AppendRow(ctx, map[sheet.Column]string{
		sheet.ColSKU:         row.SKU,
		sheet.ColVendor:      row.Vendor,
		sheet.ColPartName:    row.Name,
		sheet.ColLocation:    row.Location,
		sheet.ColQuantity:    formatInt(row.Quantity),
		sheet.ColLastUpdated: formatTime(&now),
	})
	return err
}

// SetQuantity actualiza la cantidad y la marca de tiempo de una fila.
func (r *InventoryRepository) SetQuantity(ctx context.Context, rowIndex, quantity int) error {
	now := r.now()
	return r.table.SetMany(ctx, rowIndex, map[sheet.Column]string{
		sheet.ColQuantity:    formatInt(quantity),
		sheet.ColLastUpdated: formatTime(&now),
	})
}
