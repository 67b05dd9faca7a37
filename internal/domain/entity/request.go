package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus estados del ciclo de vida de un Request.
type RequestStatus string

const (
	StatusSubmitted   RequestStatus = "Submitted" // inicial
	StatusUnderReview RequestStatus = "Under Review"
	StatusApproved    RequestStatus = "Approved"
	StatusOrdered     RequestStatus = "Ordered"
	StatusReceived    RequestStatus = "Received"
	StatusComplete    RequestStatus = "Complete" // terminal
	StatusDenied      RequestStatus = "Denied"   // terminal
	StatusOnHold      RequestStatus = "On Hold"  // consultivo
)

// AllRequestStatuses en orden de ciclo de vida; usado por el dashboard.
var AllRequestStatuses = []RequestStatus{
	StatusSubmitted, StatusUnderReview, StatusApproved, StatusOrdered,
	StatusReceived, StatusComplete, StatusDenied, StatusOnHold,
}

// ParseRequestStatus interpreta el valor de la celda de estado sin distinguir mayúsculas,
// espacios ni guiones ("UnderReview", "under review", "Under-Review").
// "Requested" es el nombre histórico del estado inicial.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case "submitted", "requested":
		return StatusSubmitted, true
	case "underreview", "inreview":
		return StatusUnderReview, true
	case "approved":
		return StatusApproved, true
	case "ordered":
		return StatusOrdered, true
	case "received":
		return StatusReceived, true
	case "complete", "completed":
		return StatusComplete, true
	case "denied":
		return StatusDenied, true
	case "onhold", "hold":
		return StatusOnHold, true
	}
	return "", false
}

// IsTerminal indica si el estado no admite más transiciones con efectos.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusDenied
}

// IsPreOrdered indica si todavía no se ha hecho la compra (Denied solo es alcanzable desde aquí).
func (s RequestStatus) IsPreOrdered() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved:
		return true
	}
	return false
}

// Prioridades válidas.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// Priorities lista de prioridades aceptadas por el intake.
var Priorities = []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Subsystems lista de subsistemas aceptados por el intake.
var Subsystems = []string{
	"Drive", "Intake", "Shooter", "Climber", "Mechanical", "Electrical",
	"Vision", "Pneumatics", "Software", "Safety", "Spares", "Other",
}

// Estados del presupuesto calculados a partir de MaxBudget y TotalEstCost.
const (
	BudgetWithin = "Within Budget"
	BudgetOver   = "Over Budget"
)

// Request representa una solicitud de compra de una pieza.
// RowIndex es la posición física de la fila en la tabla; la identidad es ID.
type Request struct {
	RowIndex          int
	ID                string
	CreatedAt         time.Time
	Requester         string
	Subsystem         string
	PartName          string
	SKU               string
	PartLink          string
	Quantity          int // 0 = celda vacía
	Priority          string
	NeededBy          *time.Time
	InventoryOnHand   string // pista informativa escrita por el enriquecimiento
	VendorStock       string
	EstUnitPrice      *decimal.Decimal
	TotalEstCost      *decimal.Decimal
	MaxBudget         *decimal.Decimal
	BudgetStatus      string
	Status            RequestStatus
	Notes             string // bitácora de auditoría, solo se agrega
	ExpeditedShipping bool
}

// HasIdentity indica si hay nombre o SKU suficientes para comprar la pieza.
func (r *Request) HasIdentity() bool {
	return strings.TrimSpace(r.PartName) != "" || strings.TrimSpace(r.SKU) != ""
}

// AppendNote agrega una línea con marca de tiempo a la bitácora. Nunca trunca.
func (r *Request) AppendNote(at time.Time, text string) {
	r.Notes = AppendAuditNote(r.Notes, at, text)
}

// RecomputeCost recalcula el costo total estimado y el estado de presupuesto.
func (r *Request) RecomputeCost() {
	if r.EstUnitPrice == nil || r.Quantity <= 0 {
		return
	}
	total := r.EstUnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity))).Round(2)
	r.TotalEstCost = &total
	if r.MaxBudget == nil {
		r.BudgetStatus = ""
		return
	}
	if total.GreaterThan(*r.MaxBudget) {
		r.BudgetStatus = BudgetOver
	} else {
		r.BudgetStatus = BudgetWithin
	}
}

// ShippingMethod devuelve el método de envío que hereda la orden.
func (r *Request) ShippingMethod() string {
	if r.ExpeditedShipping {
		return ShippingExpedited
	}
	return ShippingStandard
}

// AppendAuditNote agrega "[YYYY-MM-DD HH:MM] texto" en una nueva línea.
func AppendAuditNote(existing string, at time.Time, text string) string {
	line := fmt.Sprintf("[%s] %s", at.Format("2006-01-02 15:04"), strings.TrimSpace(text))
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return strings.TrimRight(existing, "\n") + "\n" + line
}

// auditStatuses prefijos de la bitácora que registran un efecto del ciclo de vida.
var auditStatuses = map[string]RequestStatus{
	"approved": StatusApproved,
	"ordered":  StatusOrdered,
	"received": StatusReceived,
	"complete": StatusComplete,
	"denied":   StatusDenied,
}

// LastAuditedStatus devuelve el último estado con efectos registrado en la bitácora.
// Solo cuentan las líneas "[YYYY-MM-DD HH:MM] <estado>: ..." que escribe AppendAuditNote.
func LastAuditedStatus(notes string) (RequestStatus, bool) {
	lines := strings.Split(notes, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "[") {
			continue
		}
		end := strings.Index(line, "] ")
		if end < 0 {
			continue
		}
		word, _, ok := strings.Cut(line[end+2:], ":")
		if !ok {
			continue
		}
		if st, found := auditStatuses[strings.ToLower(strings.TrimSpace(word))]; found {
			return st, true
		}
	}
	return "", false
}

// Rank posición del estado en el ciclo lineal; Denied y On Hold no tienen posición (-1).
func (s RequestStatus) Rank() int {
	switch s {
	case StatusSubmitted:
		return 0
	case StatusUnderReview:
		return 1
	case StatusApproved:
		return 2
	case StatusOrdered:
		return 3
	case StatusReceived:
		return 4
	case StatusComplete:
		return 5
	}
	return -1
}
