package repository

import "context"

// TableStore define el puerto de persistencia del almacén tabular (hojas con encabezado).
// Las filas de datos se indexan desde 0 sin contar el encabezado. El almacén no interpreta
// las celdas: todo es texto y la resolución de columnas ocurre en el paquete sheet.
type TableStore interface {
	// EnsureTable crea la tabla con el encabezado dado si no existe. Si ya existe no la modifica.
	EnsureTable(ctx context.Context, table string, header []string) error
	// Header devuelve el encabezado; nil sin error si la tabla no existe.
	Header(ctx context.Context, table string) ([]string, error)
	// Rows devuelve todas las filas de datos en orden.
	Rows(ctx context.Context, table string) ([][]string, error)
	// AppendRow agrega una fila al final y devuelve su índice.
	AppendRow(ctx context.Context, table string, cells []string) (int, error)
	// UpdateCells escribe las celdas indicadas (índice de columna → valor) de una fila.
	UpdateCells(ctx context.Context, table string, rowIndex int, cells map[int]string) error
}
