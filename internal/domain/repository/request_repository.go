package repository

import (
	"context"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// RequestRepository define el puerto de persistencia para Request (DIP).
// Not-found se devuelve como (nil, nil), nunca como error.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	GetByRow(ctx context.Context, rowIndex int) (*entity.Request, error)
	List(ctx context.Context) ([]*entity.Request, error)
	// Save escribe en su fila (RowIndex) los campos que cambiaron; el resto de celdas no se toca.
	Save(ctx context.Context, req *entity.Request) error
	// SetStatus escribe solo la celda de estado (usado para revertir transiciones).
	SetStatus(ctx context.Context, rowIndex int, status string) error
	// IsStatusColumn indica si el encabezado editado corresponde a la columna de estado.
	IsStatusColumn(ctx context.Context, header string) (bool, error)
	// StatusHeader devuelve el encabezado físico de la columna de estado.
	StatusHeader(ctx context.Context) (string, error)
}
