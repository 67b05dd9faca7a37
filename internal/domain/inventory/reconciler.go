package inventory

import (
	"strings"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// MaxFuzzyResults límite de resultados de la búsqueda difusa.
const MaxFuzzyResults = 10

// LocationPrefixes prefijos que identifican un código de ubicación física.
var LocationPrefixes = []string{"BIN-", "RACK-", "SHELF-"}

// NormalizeSKU recorta y pasa a minúsculas; es la única forma de comparar SKUs.
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// ResolveBySku agrega todas las filas cuyo SKU normalizado coincide exactamente.
// Suma las cantidades, junta las ubicaciones distintas no vacías en orden de aparición
// y toma vendor/nombre de la primera coincidencia. Devuelve nil si no hay coincidencias.
func ResolveBySku(rows []entity.InventoryRow, sku string) *entity.InventoryRecord {
	target := NormalizeSKU(sku)
	if target == "" {
		return nil
	}
	var rec *entity.InventoryRecord
	seen := map[string]bool{}
	for _, r := range rows {
		if NormalizeSKU(r.SKU) != target {
			continue
		}
		if rec == nil {
			rec = &entity.InventoryRecord{
				SKU:       strings.TrimSpace(r.SKU),
				Vendor:    r.Vendor,
				Name:      r.Name,
				Locations: []string{},
			}
		}
		rec.TotalQuantity += r.Quantity
		loc := strings.TrimSpace(r.Location)
		if loc != "" && !seen[loc] {
			seen[loc] = true
			rec.Locations = append(rec.Locations, loc)
		}
	}
	return rec
}

// IsLocationCode indica si el término de búsqueda tiene forma de código de ubicación.
func IsLocationCode(term string) bool {
	upper := strings.ToUpper(strings.TrimSpace(term))
	for _, p := range LocationPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// LocationLookup devuelve las filas cuya ubicación coincide exactamente (sin distinguir mayúsculas).
func LocationLookup(rows []entity.InventoryRow, code string) []entity.InventoryRecord {
	target := strings.ToUpper(strings.TrimSpace(code))
	out := []entity.InventoryRecord{}
	if target == "" {
		return out
	}
	for _, r := range rows {
		if strings.ToUpper(strings.TrimSpace(r.Location)) == target {
			out = append(out, fromRow(r))
		}
	}
	return out
}

// FuzzySearch busca el término como subcadena del SKU o del nombre, en orden de fila,
// con un máximo de MaxFuzzyResults. Sin ranking.
func FuzzySearch(rows []entity.InventoryRow, term string) []entity.InventoryRecord {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := []entity.InventoryRecord{}
	if needle == "" {
		return out
	}
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.SKU), needle) || strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, fromRow(r))
			if len(out) >= MaxFuzzyResults {
				break
			}
		}
	}
	return out
}

// Lookup despacha una búsqueda: código de ubicación, luego SKU exacto, luego difusa.
// sku y search pueden venir vacíos; search tiene prioridad para la ubicación.
func Lookup(rows []entity.InventoryRow, sku, search string) []entity.InventoryRecord {
	if IsLocationCode(search) {
		return LocationLookup(rows, search)
	}
	if sku != "" {
		if rec := ResolveBySku(rows, sku); rec != nil {
			return []entity.InventoryRecord{*rec}
		}
	}
	term := search
	if term == "" {
		term = sku
	}
	return FuzzySearch(rows, term)
}

// UpsertPlan resultado de PlanUpsert: actualizar una fila existente o agregar una nueva.
type UpsertPlan struct {
	Update      bool
	RowIndex    int
	NewQuantity int
	Row         entity.InventoryRow
}

// PlanUpsert decide cómo registrar una recepción: si ya existe una fila con el mismo SKU
// y ubicación, se incrementa la primera; si no, se agrega una fila nueva.
func PlanUpsert(rows []entity.InventoryRow, in entity.InventoryRow) UpsertPlan {
	sku := NormalizeSKU(in.SKU)
	loc := strings.ToUpper(strings.TrimSpace(in.Location))
	for _, r := range rows {
		if NormalizeSKU(r.SKU) == sku && strings.ToUpper(strings.TrimSpace(r.Location)) == loc {
			return UpsertPlan{Update: true, RowIndex: r.RowIndex, NewQuantity: r.Quantity + in.Quantity}
		}
	}
	in.SKU = strings.TrimSpace(in.SKU)
	in.Location = strings.TrimSpace(in.Location)
	return UpsertPlan{Row: in, NewQuantity: in.Quantity}
}

func fromRow(r entity.InventoryRow) entity.InventoryRecord {
	rec := entity.InventoryRecord{
		SKU:           strings.TrimSpace(r.SKU),
		Vendor:        r.Vendor,
		Name:          r.Name,
		TotalQuantity: r.Quantity,
		Locations:     []string{},
	}
	if loc := strings.TrimSpace(r.Location); loc != "" {
		rec.Locations = append(rec.Locations, loc)
	}
	return rec
}
