package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EnrichmentResult datos de identidad extraídos de la página del proveedor.
// Es efímero: solo se fusiona en los campos vacíos del Request.
type EnrichmentResult struct {
	PartName       string
	SKU            string
	EstimatedPrice *decimal.Decimal
	StockStatus    string
}

// IsEmpty indica que no hay nada que fusionar.
func (e *EnrichmentResult) IsEmpty() bool {
	if e == nil {
		return true
	}
	return strings.TrimSpace(e.PartName) == "" &&
		strings.TrimSpace(e.SKU) == "" &&
		e.EstimatedPrice == nil &&
		strings.TrimSpace(e.StockStatus) == ""
}
