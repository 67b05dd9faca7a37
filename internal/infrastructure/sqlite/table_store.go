package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

var _ repository.TableStore = (*TableStore)(nil)

// TableStore implementación de repository.TableStore sobre SQLite.
// Encabezado y celdas se guardan como arreglos JSON.
type TableStore struct {
	db *sql.DB
}

// Open crea o abre la base en path, aplica pragmas y el esquema.
// SQLite admite un solo escritor: el pool se limita a una conexión.
func Open(path string) (*TableStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("conectar sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("esquema sqlite: %w", err)
	}
	return &TableStore{db: db}, nil
}

// Close cierra la base.
func (s *TableStore) Close() error {
	return s.db.Close()
}

// EnsureTable registra la tabla con su encabezado si no existe.
func (s *TableStore) EnsureTable(ctx context.Context, table string, header []string) error {
	raw, err := encode(header)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheet_tables (name, headers) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`, table, raw)
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

// Header devuelve el encabezado; nil si la tabla no existe.
func (s *TableStore) Header(ctx context.Context, table string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT headers FROM sheet_tables WHERE name = ?`, table).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("header %s: %w", table, err)
	}
	return decode(raw)
}

// Rows devuelve las filas ordenadas por row_num.
func (s *TableStore) Rows(ctx context.Context, table string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM sheet_rows WHERE table_name = ? ORDER BY row_num`, table)
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row %s: %w", table, err)
		}
		cells, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// AppendRow agrega una fila al final.
func (s *TableStore) AppendRow(ctx context.Context, table string, cells []string) (int, error) {
	raw, err := encode(cells)
	if err != nil {
		return 0, err
	}
	var idx int
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var name string
		if err := tx.QueryRowContext(ctx, `SELECT name FROM sheet_tables WHERE name = ?`, table).Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("tabla %q: %w", table, domain.ErrNotFound)
			}
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(row_num) + 1, 0) FROM sheet_rows WHERE table_name = ?`, table).Scan(&idx); err != nil {
			return fmt.Errorf("next row %s: %w", table, err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (table_name, row_num, cells) VALUES (?, ?, ?)`, table, idx, raw)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", table, err)
	}
	return idx, nil
}

// UpdateCells aplica las celdas sobre la fila existente.
func (s *TableStore) UpdateCells(ctx context.Context, table string, rowIndex int, cells map[int]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx,
			`SELECT cells FROM sheet_rows WHERE table_name = ? AND row_num = ?`, table, rowIndex).Scan(&raw)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("tabla %q fila %d: %w", table, rowIndex, domain.ErrNotFound)
			}
			return fmt.Errorf("read row %s/%d: %w", table, rowIndex, err)
		}
		current, err := decode(raw)
		if err != nil {
			return err
		}
		for col, v := range cells {
			for len(current) <= col {
				current = append(current, "")
			}
			current[col] = v
		}
		updated, err := encode(current)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE sheet_rows SET cells = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			WHERE table_name = ? AND row_num = ?`, updated, table, rowIndex)
		if err != nil {
			return fmt.Errorf("update row %s/%d: %w", table, rowIndex, err)
		}
		return nil
	})
}

func (s *TableStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func encode(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("codificar celdas: %w", err)
	}
	return string(b), nil
}

func decode(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decodificar celdas: %w", err)
	}
	return cells, nil
}
