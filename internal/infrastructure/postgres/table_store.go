package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

var _ repository.TableStore = (*TableStore)(nil)

// TableStore implementación de repository.TableStore sobre PostgreSQL.
// Cada fila es un text[]; el encabezado vive en sheet_tables.
type TableStore struct {
	pool *pgxpool.Pool
}

// NewTableStore construye el adaptador con el pool.
func NewTableStore(pool *pgxpool.Pool) *TableStore {
	return &TableStore{pool: pool}
}

// Migrate crea las tablas del almacén si no existen.
func (s *TableStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// EnsureTable registra la tabla con su encabezado si no existe.
func (s *TableStore) EnsureTable(ctx context.Context, table string, header []string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sheet_tables (name, headers) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		table, header)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

// Header devuelve el encabezado; nil si la tabla no existe.
func (s *TableStore) Header(ctx context.Context, table string) ([]string, error) {
	var header []string
	err := s.pool.QueryRow(ctx, `SELECT headers FROM sheet_tables WHERE name = $1`, table).Scan(&header)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("header %s: %w", table, err)
	}
	return header, nil
}

// Rows devuelve las filas ordenadas por row_num.
func (s *TableStore) Rows(ctx context.Context, table string) ([][]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cells FROM sheet_rows WHERE table_name = $1 ORDER BY row_num`, table)
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scan row %s: %w", table, err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// AppendRow agrega una fila al final dentro de una transacción que bloquea la tabla.
func (s *TableStore) AppendRow(ctx context.Context, table string, cells []string) (int, error) {
	var idx int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockTable(ctx, tx, table); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(row_num) + 1, 0) FROM sheet_rows WHERE table_name = $1`, table).Scan(&idx); err != nil {
			return fmt.Errorf("next row %s: %w", table, err)
		}
		if cells == nil {
			cells = []string{}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO sheet_rows (table_name, row_num, cells) VALUES ($1, $2, $3)`, table, idx, cells)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("append %s fila %d: %w", table, idx, domain.ErrConflict)
			}
			return fmt.Errorf("append %s: %w", table, err)
		}
		return nil
	})
	return idx, err
}

// UpdateCells lee la fila con bloqueo, aplica las celdas y la reescribe.
func (s *TableStore) UpdateCells(ctx context.Context, table string, rowIndex int, cells map[int]string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var current []string
		err := tx.QueryRow(ctx,
			`SELECT cells FROM sheet_rows WHERE table_name = $1 AND row_num = $2 FOR UPDATE`,
			table, rowIndex).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("tabla %q fila %d: %w", table, rowIndex, domain.ErrNotFound)
			}
			return fmt.Errorf("read row %s/%d: %w", table, rowIndex, err)
		}
		for col, v := range cells {
			for len(current) <= col {
				current = append(current, "")
			}
			current[col] = v
		}
		_, err = tx.Exec(ctx,
			`UPDATE sheet_rows SET cells = $3, updated_at = now() WHERE table_name = $1 AND row_num = $2`,
			table, rowIndex, current)
		if err != nil {
			return fmt.Errorf("update row %s/%d: %w", table, rowIndex, err)
		}
		return nil
	})
}

// Patrones compartidos por SumColumn: primero se quitan símbolos de moneda, comas y
// espacios; solo se castea lo que queda si es un número completo ("1-2" o "1.2.3" no lo son).
const (
	cellNoisePattern   = `[$,[:space:]]`
	numericCellPattern = `^-?([0-9]+\.?[0-9]*|\.[0-9]+)$`
)

const sumColumnSQL = `
	SELECT COALESCE(SUM(CASE WHEN v ~ $4 THEN v::numeric END), 0)
	FROM (
		SELECT regexp_replace(cells[$2], $3, '', 'g') AS v
		FROM sheet_rows
		WHERE table_name = $1
	) AS c`

// SumColumn suma como NUMERIC una columna de texto (celdas vacías o no numéricas se ignoran).
func (s *TableStore) SumColumn(ctx context.Context, table string, col int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, sumColumnSQL, table, col+1, cellNoisePattern, numericCellPattern).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s[%d]: %w", table, col, err)
	}
	return total, nil
}

func (s *TableStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func lockTable(ctx context.Context, tx pgx.Tx, table string) error {
	var name string
	err := tx.QueryRow(ctx, `SELECT name FROM sheet_tables WHERE name = $1 FOR UPDATE`, table).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("tabla %q: %w", table, domain.ErrNotFound)
		}
		return fmt.Errorf("lock %s: %w", table, err)
	}
	return nil
}

// isUniqueViolation detecta la violación de la clave (table_name, row_num).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
