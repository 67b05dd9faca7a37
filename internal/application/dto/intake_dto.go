package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Acciones reconocidas por el endpoint de intake.
const (
	ActionDiscordRequest = "discordRequest"
	ActionCreateRequest  = "createRequest"
	ActionInventory      = "inventory"
	ActionOrderStatus    = "orderStatus"
	ActionOpenOrders     = "openOrders"
	ActionHealth         = "health"
)

// ValidActions lista las acciones aceptadas (se devuelve en el error INVALID_ACTION).
var ValidActions = []string{
	ActionDiscordRequest, ActionCreateRequest, ActionInventory,
	ActionOrderStatus, ActionOpenOrders, ActionHealth,
}

// Estados del sobre de respuesta.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Códigos de error del intake.
const (
	CodeInvalidAction    = "INVALID_ACTION"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeStore            = "SHEET_ERROR"
	CodeExternal         = "EXTERNAL_API_ERROR"
)

// IntakeRequest cuerpo de POST /api/intake: discriminador action más los campos de cada acción.
type IntakeRequest struct {
	Action  string `json:"action"`
	TraceID string `json:"traceId"`

	// discordRequest / createRequest
	Requester         string           `json:"requester"`
	Subsystem         string           `json:"subsystem"`
	PartName          string           `json:"partName"`
	PartLink          string           `json:"partLink"`
	Quantity          *int             `json:"quantity"`
	NeededBy          string           `json:"neededBy"`
	MaxBudget         *decimal.Decimal `json:"maxBudget"`
	Priority          string           `json:"priority"`
	Notes             string           `json:"notes"`
	ExpeditedShipping bool             `json:"expeditedShipping"`

	// inventory
	SKU    string `json:"sku"`
	Search string `json:"search"`

	// orderStatus
	RequestID string `json:"requestId"`
	OrderID   string `json:"orderId"`
}

// Meta metadatos del sobre estructurado.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	TraceID   string    `json:"traceId"`
}

// EnvelopeError error del sobre estructurado.
type EnvelopeError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details"`
}

func (e *EnvelopeError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Envelope respuesta del intake: {status, data, meta} o {status, error, meta}.
type Envelope struct {
	Status string          `json:"status"`
	Data   any             `json:"data,omitempty"`
	Error  *EnvelopeError  `json:"error,omitempty"`
	Meta   *Meta           `json:"meta,omitempty"`
	Raw    json.RawMessage `json:"-"`
}

// OK construye un sobre exitoso.
func OK(data any, version, traceID string) Envelope {
	return Envelope{Status: StatusOK, Data: data, Meta: &Meta{Timestamp: time.Now().UTC(), Version: version, TraceID: traceID}}
}

// Fail construye un sobre de error.
func Fail(e *EnvelopeError, version, traceID string) Envelope {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	return Envelope{Status: StatusError, Error: e, Meta: &Meta{Timestamp: time.Now().UTC(), Version: version, TraceID: traceID}}
}

// DecodeEnvelope interpreta una respuesta en cualquiera de las dos formas:
// la estructurada ({status, data|error, meta}) o la básica ({status, ...campos}) donde los
// datos van al nivel raíz y el error puede ser un string.
// Raw queda con el objeto de datos en ambos casos.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("respuesta no es un objeto JSON: %w", err)
	}
	env := &Envelope{}
	if raw, ok := probe["status"]; ok {
		if err := json.Unmarshal(raw, &env.Status); err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
	}
	if raw, ok := probe["meta"]; ok && !isNull(raw) {
		env.Meta = &Meta{}
		if err := json.Unmarshal(raw, env.Meta); err != nil {
			return nil, fmt.Errorf("meta: %w", err)
		}
	}
	if raw, ok := probe["error"]; ok && !isNull(raw) {
		env.Error = &EnvelopeError{}
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &env.Error.Message); err != nil {
				return nil, fmt.Errorf("error: %w", err)
			}
		} else if err := json.Unmarshal(raw, env.Error); err != nil {
			return nil, fmt.Errorf("error: %w", err)
		}
		if env.Status == "" {
			env.Status = StatusError
		}
	}
	if raw, ok := probe["data"]; ok {
		env.Raw = raw
	} else {
		for _, k := range []string{"status", "meta", "error"} {
			delete(probe, k)
		}
		raw, err := json.Marshal(probe)
		if err != nil {
			return nil, err
		}
		env.Raw = raw
	}
	if env.Status == "" {
		env.Status = StatusOK
	}
	return env, nil
}

// DecodeData decodifica los datos del sobre en out.
func (e *Envelope) DecodeData(out any) error {
	if len(e.Raw) == 0 {
		return nil
	}
	return json.Unmarshal(e.Raw, out)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// CreatedRequest datos de la respuesta de creación. requestID conserva la mayúscula histórica.
type CreatedRequest struct {
	RequestID  string `json:"requestID"`
	Row        int    `json:"row"`
	Enrichment string `json:"enrichment,omitempty"`
}

// InventoryMatch una coincidencia de la búsqueda de inventario.
type InventoryMatch struct {
	SKU       string   `json:"sku"`
	Vendor    string   `json:"vendor"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Quantity  int      `json:"quantity"`
	Locations []string `json:"locations,omitempty"`
}

// InventoryResult respuesta de la acción inventory.
type InventoryResult struct {
	Matches []InventoryMatch `json:"matches"`
}

// RequestView vista de un Request en las respuestas.
type RequestView struct {
	ID              string           `json:"id"`
	Timestamp       *time.Time       `json:"timestamp"`
	Requester       string           `json:"requester"`
	Subsystem       string           `json:"subsystem"`
	PartName        string           `json:"partName"`
	SKU             string           `json:"sku"`
	Link            string           `json:"link"`
	Qty             int              `json:"qty"`
	Priority        string           `json:"priority"`
	NeededBy        *time.Time       `json:"neededBy"`
	InventoryOnHand string           `json:"inventoryOnHand,omitempty"`
	VendorStock     string           `json:"vendorStock,omitempty"`
	EstUnitPrice    *decimal.Decimal `json:"estUnitPrice,omitempty"`
	TotalEstCost    *decimal.Decimal `json:"totalEstCost,omitempty"`
	MaxBudget       *decimal.Decimal `json:"maxBudget,omitempty"`
	BudgetStatus    string           `json:"budgetStatus,omitempty"`
	RequestStatus   string           `json:"requestStatus"`
	MentorNotes     string           `json:"mentorNotes"`
	Shipping        string           `json:"shipping"`
}

// OrderView vista de una Order en las respuestas.
type OrderView struct {
	OrderID          string           `json:"orderId"`
	IncludedRequests string           `json:"includedRequests"`
	Vendor           string           `json:"vendor"`
	PartName         string           `json:"partName"`
	SKU              string           `json:"sku"`
	Qty              int              `json:"qty"`
	UnitPrice        *decimal.Decimal `json:"unitPrice,omitempty"`
	TotalCost        *decimal.Decimal `json:"totalCost,omitempty"`
	OrderDate        *time.Time       `json:"orderDate"`
	Shipping         string           `json:"shipping"`
	Tracking         string           `json:"tracking"`
	ETA              *time.Time       `json:"eta"`
	ReceivedDate     *time.Time       `json:"receivedDate"`
	Status           string           `json:"status"`
	MentorNotes      string           `json:"mentorNotes,omitempty"`
}

// OrderStatusResult respuesta de la acción orderStatus.
type OrderStatusResult struct {
	Request *RequestView `json:"request,omitempty"`
	Orders  []OrderView  `json:"orders,omitempty"`
	Order   *OrderView   `json:"order,omitempty"`
}

// OpenOrdersResult respuesta de la acción openOrders.
type OpenOrdersResult struct {
	Orders []OrderView   `json:"orders"`
	Denied []RequestView `json:"denied"`
}

// HealthResult respuesta de la acción health.
type HealthResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
