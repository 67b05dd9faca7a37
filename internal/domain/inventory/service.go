package inventory

import (
	"context"
	"fmt"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
)

// Reconciler servicio de dominio que aplica la conciliación sobre el repositorio de inventario.
type Reconciler struct {
	repo repository.InventoryRepository
}

// NewReconciler construye el servicio con el repositorio de filas físicas.
func NewReconciler(repo repository.InventoryRepository) *Reconciler {
	return &Reconciler{repo: repo}
}

// ResolveBySku carga las filas y devuelve el registro lógico del SKU (nil si no existe).
func (s *Reconciler) ResolveBySku(ctx context.Context, sku string) (*entity.InventoryRecord, error) {
	rows, err := s.repo.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer inventario: %w", err)
	}
	return ResolveBySku(rows, sku), nil
}

// Lookup ejecuta la búsqueda ubicación → SKU → difusa.
func (s *Reconciler) Lookup(ctx context.Context, sku, search string) ([]entity.InventoryRecord, error) {
	rows, err := s.repo.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer inventario: %w", err)
	}
	return Lookup(rows, sku, search), nil
}

// Upsert registra cantidad recibida en una ubicación y devuelve el total lógico resultante del SKU.
func (s *Reconciler) Upsert(ctx context.Context, in entity.InventoryRow) (*entity.InventoryRecord, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("upsert %s: cantidad %d no positiva", in.SKU, in.Quantity)
	}
	rows, err := s.repo.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer inventario: %w", err)
	}
	plan := PlanUpsert(rows, in)
	if plan.Update {
		if err := s.repo.SetQuantity(ctx, plan.RowIndex, plan.NewQuantity); err != nil {
			return nil, fmt.Errorf("actualizar fila %d: %w", plan.RowIndex, err)
		}
	} else if err := s.repo.Append(ctx, plan.Row); err != nil {
		return nil, fmt.Errorf("agregar fila: %w", err)
	}
	return s.ResolveBySku(ctx, in.SKU)
}
