// Package store selecciona y abre el almacén de tablas configurado (memory, postgres, sqlite).
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/infrastructure/memory"
	"github.com/pumpkinbots/partbot/internal/infrastructure/postgres"
	"github.com/pumpkinbots/partbot/internal/infrastructure/sqlite"
	"github.com/pumpkinbots/partbot/pkg/config"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open abre el almacén según cfg.Store.Driver y devuelve cómo cerrarlo.
// Con postgres aplica el esquema antes de devolver.
func Open(ctx context.Context, cfg *config.Config) (repository.TableStore, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.NewTableStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("store: migrar: %w", err)
		}
		return s, closerFunc(func() error { pool.Close(); return nil }), nil
	case config.StoreDriverSQLite:
		s, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreDriverMemory, "":
		return memory.NewTableStore(), closerFunc(func() error { return nil }), nil
	}
	return nil, nil, fmt.Errorf("store: driver desconocido %q", cfg.Store.Driver)
}
