package entity

import "time"

// InventoryRow fila física del inventario: una ubicación de una pieza.
// La misma pieza puede estar repartida en varias filas (varios bins).
type InventoryRow struct {
	RowIndex    int
	SKU         string
	Vendor      string
	Name        string
	Location    string
	Quantity    int
	LastUpdated *time.Time
}

// InventoryRecord vista lógica de una pieza: suma de todas sus filas físicas.
// Se calcula al leer; nunca se persiste.
type InventoryRecord struct {
	SKU           string
	Vendor        string
	Name          string
	TotalQuantity int
	Locations     []string
}
