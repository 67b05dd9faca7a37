package tables

import (
	"context"

	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
)

// Schemas todas las tablas que usa la aplicación.
var Schemas = []sheet.Schema{
	sheet.RequestsSchema,
	sheet.OrdersSchema,
	sheet.InventorySchema,
	sheet.UsersSchema,
}

// Provision crea las tablas que falten con su encabezado canónico.
func Provision(ctx context.Context, store repository.TableStore) error {
	for _, s := range Schemas {
		if err := sheet.NewTable(store, s).Ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
