package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/inventory"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/sheet"
	"github.com/pumpkinbots/partbot/pkg/metrics"
)

// Announcer recibe los eventos de la máquina de estados que generan notificación.
// El envío es de un intento y sus fallos no afectan la transición.
type Announcer interface {
	RequestApproved(ctx context.Context, req *entity.Request, order *entity.Order)
	RequestDenied(ctx context.Context, req *entity.Request, reason string)
}

// Engine máquina de estados del ciclo de vida de un Request.
// Todos los métodos públicos pasan por la cola serializada.
type Engine struct {
	requests   repository.RequestRepository
	orders     repository.OrderRepository
	reconciler *inventory.Reconciler
	announcer  Announcer
	pending    *PendingStore
	queue      *Queue
	log        zerolog.Logger
	now        func() time.Time
}

// NewEngine construye el motor con sus colaboradores.
func NewEngine(
	requests repository.RequestRepository,
	orders repository.OrderRepository,
	reconciler *inventory.Reconciler,
	announcer Announcer,
	queue *Queue,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		requests:   requests,
		orders:     orders,
		reconciler: reconciler,
		announcer:  announcer,
		pending:    NewPendingStore(),
		queue:      queue,
		log:        log,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (pruebas).
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// HandleEdit procesa un evento de edición de celda tal como lo emite el host de la tabla.
// La celda ya contiene el valor nuevo.
func (e *Engine) HandleEdit(ctx context.Context, edit entity.CellEdit, input entity.TransitionInput) (entity.TransitionResult, error) {
	var res entity.TransitionResult
	err := e.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = e.handle(ctx, edit, input)
		return err
	})
	return res, err
}

// ChangeStatus escribe el estado de un Request y procesa el evento resultante.
// Es el equivalente por API a que un revisor edite la celda.
func (e *Engine) ChangeStatus(ctx context.Context, requestID, status string, input entity.TransitionInput) (entity.TransitionResult, error) {
	var res entity.TransitionResult
	err := e.queue.Do(ctx, func(ctx context.Context) error {
		req, err := e.requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
		}
		target, ok := entity.ParseRequestStatus(status)
		if !ok {
			return domain.NewValidationError("status", "estado desconocido").WithDetail("value", status)
		}
		header, err := e.requests.StatusHeader(ctx)
		if err != nil {
			return err
		}
		edit := entity.CellEdit{
			Table:    sheet.TableRequests,
			RowIndex: req.RowIndex,
			Column:   header,
			OldValue: string(req.Status),
			NewValue: string(target),
		}
		if edit.OldValue != edit.NewValue {
			if err := e.requests.SetStatus(ctx, req.RowIndex, edit.NewValue); err != nil {
				return err
			}
		}
		res, err = e.handle(ctx, edit, input)
		return err
	})
	return res, err
}

// Do ejecuta una tarea arbitraria en la cola (otros escritores, p. ej. el intake).
func (e *Engine) Do(ctx context.Context, task Task) error {
	return e.queue.Do(ctx, task)
}

// Pending lista las transiciones que esperan un dato.
func (e *Engine) Pending() []entity.PendingInput {
	return e.pending.List()
}

func (e *Engine) handle(ctx context.Context, edit entity.CellEdit, input entity.TransitionInput) (entity.TransitionResult, error) {
	if !strings.EqualFold(strings.TrimSpace(edit.Table), sheet.TableRequests) || !edit.SingleCell() {
		return ignored("no es una edición de una celda de Part Requests"), nil
	}
	if strings.TrimSpace(edit.NewValue) == strings.TrimSpace(edit.OldValue) {
		return ignored("sin cambio de valor"), nil
	}
	isStatus, err := e.requests.IsStatusColumn(ctx, edit.Column)
	if err != nil {
		return entity.TransitionResult{}, err
	}
	if !isStatus {
		return ignored("la columna editada no es la de estado"), nil
	}

	req, err := e.requests.GetByRow(ctx, edit.RowIndex)
	if err != nil {
		return entity.TransitionResult{}, err
	}
	if req == nil || req.ID == "" {
		return ignored("fila sin request"), nil
	}
	log := e.log.With().Str("request_id", req.ID).Str("from", edit.OldValue).Str("to", edit.NewValue).Logger()

	target, ok := entity.ParseRequestStatus(edit.NewValue)
	if !ok {
		return e.reject(ctx, log, req, edit.OldValue, entity.RequestStatus(edit.NewValue),
			fmt.Sprintf("estado desconocido %q", edit.NewValue))
	}
	from, _ := entity.ParseRequestStatus(edit.OldValue)
	req.Status = target
	e.pending.DropRequest(req.ID)

	resumed := false
	if from == entity.StatusOnHold || from == "" || target == entity.StatusDenied {
		pos, err := e.position(ctx, req, from)
		if err != nil {
			return entity.TransitionResult{}, err
		}
		resumed = from == entity.StatusOnHold && target == pos
		from = pos
	}

	if msg := checkEdge(from, target); msg != "" {
		return e.reject(ctx, log, req, edit.OldValue, target, msg)
	}
	if resumed {
		log.Info().Msg("resumed from hold, effects already applied")
		res := entity.TransitionResult{RequestID: req.ID, Status: target, Outcome: entity.OutcomeNoop, Message: "reanudado"}
		metrics.TransitionsTotal.WithLabelValues(string(target), res.Outcome).Inc()
		return res, nil
	}

	var res entity.TransitionResult
	switch target {
	case entity.StatusApproved:
		res, err = e.approve(ctx, log, req, edit.OldValue)
	case entity.StatusOrdered:
		res, err = e.markOrdered(ctx, log, req, input)
	case entity.StatusReceived:
		res, err = e.receive(ctx, log, req, edit, input)
	case entity.StatusComplete:
		res, err = e.complete(ctx, log, req)
	case entity.StatusDenied:
		res, err = e.deny(ctx, log, req, input)
	default:
		log.Info().Msg("status acknowledged")
		res = entity.TransitionResult{Outcome: entity.OutcomeApplied, Message: "acknowledged"}
	}
	if err != nil {
		metrics.TransitionsTotal.WithLabelValues(string(target), "failed").Inc()
		log.Error().Err(err).Msg("transition failed")
		return entity.TransitionResult{}, err
	}
	res.RequestID = req.ID
	if res.Status == "" {
		res.Status = target
	}
	metrics.TransitionsTotal.WithLabelValues(string(target), res.Outcome).Inc()
	return res, nil
}

// position devuelve la posición real del Request en el ciclo de vida.
// Cuando la celda no la refleja (On Hold o un valor ilegible) se toma el último efecto
// de la bitácora; en todos los casos el estado de la orden vinculada puede adelantarla.
func (e *Engine) position(ctx context.Context, req *entity.Request, from entity.RequestStatus) (entity.RequestStatus, error) {
	pos := from
	if pos == entity.StatusOnHold || pos == "" {
		pos = entity.StatusUnderReview
		if st, ok := entity.LastAuditedStatus(req.Notes); ok {
			pos = st
		}
	}
	if pos.IsTerminal() {
		return pos, nil
	}
	order, err := e.orders.FindByRequestID(ctx, req.ID)
	if err != nil {
		return "", err
	}
	if order != nil {
		if reached := orderPosition(order.Status); reached.Rank() > pos.Rank() {
			pos = reached
		}
	}
	return pos, nil
}

func orderPosition(s entity.OrderStatus) entity.RequestStatus {
	switch s {
	case entity.OrderReceived:
		return entity.StatusReceived
	case entity.OrderOrdered, entity.OrderShipped:
		return entity.StatusOrdered
	case entity.OrderCancelled:
		return ""
	}
	return entity.StatusApproved
}

// checkEdge valida el grafo de transiciones. Devuelve el motivo del rechazo o "".
func checkEdge(from, to entity.RequestStatus) string {
	if to == entity.StatusOnHold {
		return ""
	}
	if from.IsTerminal() && to != from {
		return fmt.Sprintf("%s es terminal", from)
	}
	if to == entity.StatusDenied && !from.IsPreOrdered() {
		return fmt.Sprintf("no se puede denegar un request en estado %s", from)
	}
	return ""
}

// reject revierte la celda de estado al valor anterior.
func (e *Engine) reject(ctx context.Context, log zerolog.Logger, req *entity.Request, oldValue string, target entity.RequestStatus, msg string) (entity.TransitionResult, error) {
	if err := e.requests.SetStatus(ctx, req.RowIndex, oldValue); err != nil {
		return entity.TransitionResult{}, err
	}
	log.Warn().Str("reason", msg).Msg("transition rejected, status reverted")
	metrics.TransitionsTotal.WithLabelValues(string(target), entity.OutcomeRejected).Inc()
	return entity.TransitionResult{
		RequestID: req.ID,
		Status:    entity.RequestStatus(oldValue),
		Outcome:   entity.OutcomeRejected,
		Message:   msg,
	}, nil
}

func ignored(msg string) entity.TransitionResult {
	metrics.TransitionsTotal.WithLabelValues("", entity.OutcomeIgnored).Inc()
	return entity.TransitionResult{Outcome: entity.OutcomeIgnored, Message: msg}
}

func newPendingID() string {
	return "PND-" + strings.ToUpper(uuid.NewString()[:8])
}
