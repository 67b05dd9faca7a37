package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/pumpkinbots/partbot/internal/domain/repository"
)

// Row fila de datos con su layout resuelto. Index es la posición física (0 = primera fila de datos).
type Row struct {
	Index  int
	cells  []string
	layout Layout
}

// NewRow construye una fila a partir de celdas y layout (útil en pruebas y en el conciliador).
func NewRow(index int, cells []string, layout Layout) Row {
	return Row{Index: index, cells: cells, layout: layout}
}

// Get devuelve el valor recortado de la columna. ok=false si la columna está ausente.
// Una celda más allá del final de la fila se lee como vacía.
func (r Row) Get(col Column) (string, bool) {
	i := r.layout.Index(col)
	if i == Absent {
		return "", false
	}
	if i >= len(r.cells) {
		return "", true
	}
	return strings.TrimSpace(r.cells[i]), true
}

// Value igual que Get pero trata la columna ausente como celda vacía.
func (r Row) Value(col Column) string {
	v, _ := r.Get(col)
	return v
}

// Table acceso por nombre de columna sobre una tabla del almacén.
type Table struct {
	store  repository.TableStore
	schema Schema
}

// NewTable construye el accessor de una tabla.
func NewTable(store repository.TableStore, schema Schema) *Table {
	return &Table{store: store, schema: schema}
}

// Name devuelve el nombre de la tabla.
func (t *Table) Name() string { return t.schema.Table }

// Ensure aprovisiona la tabla con el encabezado canónico si no existe.
func (t *Table) Ensure(ctx context.Context) error {
	if err := t.store.EnsureTable(ctx, t.schema.Table, t.schema.Header()); err != nil {
		return fmt.Errorf("ensure %s: %w", t.schema.Table, err)
	}
	return nil
}

// Layout resuelve las columnas contra el encabezado actual.
func (t *Table) Layout(ctx context.Context) (Layout, error) {
	header, err := t.store.Header(ctx, t.schema.Table)
	if err != nil {
		return nil, fmt.Errorf("header %s: %w", t.schema.Table, err)
	}
	return Resolve(t.schema, header), nil
}

// Rows carga todas las filas de datos.
func (t *Table) Rows(ctx context.Context) ([]Row, error) {
	layout, err := t.Layout(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := t.store.Rows(ctx, t.schema.Table)
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", t.schema.Table, err)
	}
	rows := make([]Row, len(raw))
	for i, cells := range raw {
		rows[i] = Row{Index: i, cells: cells, layout: layout}
	}
	return rows, nil
}

// FindRow devuelve la primera fila que cumple el predicado.
func (t *Table) FindRow(ctx context.Context, pred func(Row) bool) (*Row, bool, error) {
	rows, err := t.Rows(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range rows {
		if pred(rows[i]) {
			return &rows[i], true, nil
		}
	}
	return nil, false, nil
}

// RowAt devuelve la fila en la posición física dada.
func (t *Table) RowAt(ctx context.Context, index int) (*Row, bool, error) {
	rows, err := t.Rows(ctx)
	if err != nil {
		return nil, false, err
	}
	if index < 0 || index >= len(rows) {
		return nil, false, nil
	}
	return &rows[index], true, nil
}

// AppendRow agrega una fila. Las columnas que la tabla no tiene se omiten.
func (t *Table) AppendRow(ctx context.Context, record map[Column]string) (int, error) {
	header, err := t.store.Header(ctx, t.schema.Table)
	if err != nil {
		return 0, fmt.Errorf("header %s: %w", t.schema.Table, err)
	}
	layout := Resolve(t.schema, header)
	cells := make([]string, len(header))
	for col, v := range record {
		if i := layout.Index(col); i != Absent {
			cells[i] = v
		}
	}
	idx, err := t.store.AppendRow(ctx, t.schema.Table, cells)
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", t.schema.Table, err)
	}
	return idx, nil
}

// Set escribe una celda. Devuelve ErrColumnAbsent si la tabla no tiene la columna.
func (t *Table) Set(ctx context.Context, rowIndex int, col Column, value string) error {
	layout, err := t.Layout(ctx)
	if err != nil {
		return err
	}
	i := layout.Index(col)
	if i == Absent {
		return fmt.Errorf("%s.%s: %w", t.schema.Table, col, ErrColumnAbsent)
	}
	return t.write(ctx, rowIndex, map[int]string{i: value})
}

// SetMany escribe varias celdas de una fila; las columnas ausentes se omiten.
func (t *Table) SetMany(ctx context.Context, rowIndex int, values map[Column]string) error {
	layout, err := t.Layout(ctx)
	if err != nil {
		return err
	}
	cells := make(map[int]string, len(values))
	for col, v := range values {
		if i := layout.Index(col); i != Absent {
			cells[i] = v
		}
	}
	if len(cells) == 0 {
		return nil
	}
	return t.write(ctx, rowIndex, cells)
}

// ColumnForHeader indica qué columna lógica corresponde a un encabezado físico.
func (t *Table) ColumnForHeader(ctx context.Context, header string) (Column, bool, error) {
	layout, err := t.Layout(ctx)
	if err != nil {
		return "", false, err
	}
	physical, err := t.store.Header(ctx, t.schema.Table)
	if err != nil {
		return "", false, fmt.Errorf("header %s: %w", t.schema.Table, err)
	}
	target := normalize(header)
	for col, i := range layout {
		if i < len(physical) && normalize(physical[i]) == target {
			return col, true, nil
		}
	}
	return "", false, nil
}

func (t *Table) write(ctx context.Context, rowIndex int, cells map[int]string) error {
	if err := t.store.UpdateCells(ctx, t.schema.Table, rowIndex, cells); err != nil {
		return fmt.Errorf("update %s row %d: %w", t.schema.Table, rowIndex, err)
	}
	return nil
}

// HeaderFor devuelve el encabezado físico asignado a una columna lógica.
func (t *Table) HeaderFor(ctx context.Context, col Column) (string, bool, error) {
	physical, err := t.store.Header(ctx, t.schema.Table)
	if err != nil {
		return "", false, fmt.Errorf("header %s: %w", t.schema.Table, err)
	}
	i := Resolve(t.schema, physical).Index(col)
	if i == Absent {
		return "", false, nil
	}
	return physical[i], true, nil
}
