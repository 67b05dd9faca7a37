package tables

import (
	"context"
	"fmt"

	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository implementa repository.UserRepository sobre la tabla Users.
type UserRepository struct {
	table *sheet.Table
}

// NewUserRepository construye el repositorio de usuarios.
func NewUserRepository(store repository.TableStore) *UserRepository {
	return &UserRepository{table: sheet.NewTable(store, sheet.UsersSchema)}
}

// Create agrega el usuario. Devuelve domain.ErrConflict si el username ya existe.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	existing, err := r.FindByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("usuario %s: %w", user.Username, domain.ErrConflict)
	}
	idx, err := r.table.AppendRow(ctx, map[sheet.Column]string{
		sheet.ColUsername:     user.Username,
		sheet.ColPasswordHash: user.PasswordHash,
		sheet.ColRole:         user.Role,
		sheet.ColActive:       formatBool(user.Active),
	})
	if err != nil {
		return err
	}
	user.RowIndex = idx
	return nil
}

// FindByUsername busca sin distinguir mayúsculas. (nil, nil) si no existe.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	row, ok, err := r.table.FindRow(ctx, func(row sheet.Row) bool {
		return sameID(row.Value(sheet.ColUsername), username)
	})
	if err != nil || !ok {
		return nil, err
	}
	return &entity.User{
		RowIndex:     row.Index,
		Username:     row.Value(sheet.ColUsername),
		PasswordHash: row.Value(sheet.ColPasswordHash),
		Role:         row.Value(sheet.ColRole),
		Active:       parseBool(row.Value(sheet.ColActive)),
	}, nil
}
