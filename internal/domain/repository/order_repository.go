package repository

import (
	"context"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order (DIP).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// FindByRequestID busca la primera orden cuyo conjunto de requests incluye el id.
	FindByRequestID(ctx context.Context, requestID string) (*entity.Order, error)
	ListByRequestID(ctx context.Context, requestID string) ([]*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	Save(ctx context.Context, order *entity.Order) error
}
