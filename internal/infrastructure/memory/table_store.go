package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
)

var _ repository.TableStore = (*TableStore)(nil)

type table struct {
	header []string
	rows   [][]string
}

// TableStore almacén tabular en memoria. Se usa en desarrollo y en pruebas.
type TableStore struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewTableStore construye un almacén vacío.
func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[string]*table)}
}

// EnsureTable crea la tabla si no existe.
func (s *TableStore) EnsureTable(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; ok {
		return nil
	}
	s.tables[name] = &table{header: clone(header)}
	return nil
}

// Header devuelve una copia del encabezado; nil si la tabla no existe.
func (s *TableStore) Header(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, nil
	}
	return clone(t.header), nil
}

// Rows devuelve una copia de las filas.
func (s *TableStore) Rows(_ context.Context, name string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, nil
	}
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = clone(r)
	}
	return out, nil
}

// AppendRow agrega una fila y devuelve su índice.
func (s *TableStore) AppendRow(_ context.Context, name string, cells []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return 0, fmt.Errorf("tabla %q: %w", name, domain.ErrNotFound)
	}
	t.rows = append(t.rows, clone(cells))
	return len(t.rows) - 1, nil
}

// UpdateCells escribe celdas de una fila existente, extendiéndola si hace falta.
func (s *TableStore) UpdateCells(_ context.Context, name string, rowIndex int, cells map[int]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("tabla %q: %w", name, domain.ErrNotFound)
	}
	if rowIndex < 0 || rowIndex >= len(t.rows) {
		return fmt.Errorf("tabla %q fila %d: %w", name, rowIndex, domain.ErrNotFound)
	}
	row := t.rows[rowIndex]
	for col, v := range cells {
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = v
	}
	t.rows[rowIndex] = row
	return nil
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
