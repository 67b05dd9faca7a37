package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estados de una orden de compra.
type OrderStatus string

const (
	// OrderAwaitingPurchase centinela: la orden existe pero aún no se ha comprado.
	OrderAwaitingPurchase OrderStatus = "Awaiting Purchase"
	OrderOrdered          OrderStatus = "Ordered"
	OrderShipped          OrderStatus = "Shipped"
	OrderReceived         OrderStatus = "Received"
	OrderCancelled        OrderStatus = "Cancelled"
)

// Métodos de envío.
const (
	ShippingStandard  = "Standard"
	ShippingExpedited = "Expedited"
)

// Order representa una compra al proveedor creada desde uno o más Requests aprobados.
type Order struct {
	RowIndex           int
	ID                 string
	IncludedRequestIDs []string
	Vendor             string
	PartName           string
	SKU                string
	Quantity           int
	UnitPrice          *decimal.Decimal
	TotalCost          *decimal.Decimal
	OrderDate          *time.Time
	ShippingMethod     string
	Tracking           string
	ETA                *time.Time
	ReceivedDate       *time.Time
	Status             OrderStatus
	Notes              string
}

// Includes indica si la orden agrupa el Request indicado.
func (o *Order) Includes(requestID string) bool {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return false
	}
	for _, id := range o.IncludedRequestIDs {
		if strings.EqualFold(id, requestID) {
			return true
		}
	}
	return false
}

// IsOpen indica si la orden sigue pendiente: sin fecha de recepción y no cancelada.
func (o *Order) IsOpen() bool {
	if strings.TrimSpace(o.ID) == "" || o.ReceivedDate != nil {
		return false
	}
	return !strings.EqualFold(string(o.Status), string(OrderCancelled))
}

// AppendNote agrega una línea con marca de tiempo a las notas de la orden.
func (o *Order) AppendNote(at time.Time, text string) {
	o.Notes = AppendAuditNote(o.Notes, at, text)
}

// ParseRequestIDs separa la celda "REQ-1, REQ-2" en un conjunto sin vacíos ni duplicados.
func ParseRequestIDs(raw string) []string {
	seen := map[string]bool{}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
