package entity

import "time"

// CellEdit evento de edición de una celda (o rango) de una tabla.
// Es el disparador de la máquina de estados: solo se evalúa si afecta una única celda
// de la columna de estado y el valor nuevo difiere del anterior.
type CellEdit struct {
	Table      string
	RowIndex   int
	Column     string // encabezado editado, tal cual aparece en la tabla
	OldValue   string
	NewValue   string
	NumRows    int
	NumColumns int
}

// SingleCell indica si la edición afecta exactamente una celda.
func (e CellEdit) SingleCell() bool {
	rows, cols := e.NumRows, e.NumColumns
	if rows == 0 {
		rows = 1
	}
	if cols == 0 {
		cols = 1
	}
	return rows == 1 && cols == 1
}

// TransitionInput datos que aporta el revisor junto al cambio de estado
// (lo que antes se pedía con diálogos modales).
type TransitionInput struct {
	Reason    string     `json:"reason"`
	OrderDate *time.Time `json:"orderDate"`
	Tracking  string     `json:"tracking"`
	Quantity  int        `json:"quantity"`
	Location  string     `json:"location"`
}

// Tipos de entrada pendiente.
const (
	PendingQuantity        = "quantity"
	PendingStorageLocation = "storage_location"
)

// PendingInput sub-estado "esperando dato": continuación reanudable de una transición
// que necesita información humana para completarse.
type PendingInput struct {
	ID        string          `json:"id"`
	RequestID string          `json:"requestId"`
	Kind      string          `json:"kind"`
	Edit      CellEdit        `json:"-"`
	Input     TransitionInput `json:"-"`
	Prompt    string          `json:"prompt"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Resultados de una transición.
const (
	OutcomeApplied  = "applied"  // efectos ejecutados
	OutcomePartial  = "partial"  // efectos principales ejecutados, inventario sin conciliar
	OutcomePending  = "pending"  // esperando entrada humana
	OutcomeRejected = "rejected" // validación fallida, estado revertido
	OutcomeIgnored  = "ignored"  // el evento no es un cambio de estado relevante
	OutcomeNoop     = "noop"     // entrega duplicada o estado consultivo
)

// TransitionResult describe lo que hizo la máquina de estados con un evento.
type TransitionResult struct {
	RequestID string        `json:"requestId,omitempty"`
	Status    RequestStatus `json:"status,omitempty"`
	Outcome   string        `json:"outcome"`
	Message   string        `json:"message,omitempty"`
	OrderID   string        `json:"orderId,omitempty"`
	Pending   *PendingInput `json:"pending,omitempty"`
}
