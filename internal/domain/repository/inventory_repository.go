package repository

import (
	"context"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// InventoryRepository define el puerto de acceso a las filas físicas de inventario.
// La agregación por SKU vive en el paquete domain/inventory, no aquí.
type InventoryRepository interface {
	Rows(ctx context.Context) ([]entity.InventoryRow, error)
	Append(ctx context.Context, row entity.InventoryRow) error
	// SetQuantity actualiza la cantidad (y la marca de tiempo) de una fila existente.
	SetQuantity(ctx context.Context, rowIndex, quantity int) error
}
