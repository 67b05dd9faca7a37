package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/application/enrichment"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/vendor"
	"github.com/pumpkinbots/partbot/pkg/metrics"
)

func (e *Engine) approve(ctx context.Context, log zerolog.Logger, req *entity.Request, oldValue string) (entity.TransitionResult, error) {
	if !req.HasIdentity() {
		return e.reject(ctx, log, req, oldValue, entity.StatusApproved, "se requiere nombre de pieza o SKU para aprobar")
	}
	existing, err := e.orders.FindByRequestID(ctx, req.ID)
	if err != nil {
		return entity.TransitionResult{}, err
	}
	if existing != nil {
		log.Info().Str("order_id", existing.ID).Msg("approval already has an order, skipping")
		return entity.TransitionResult{Outcome: entity.OutcomeNoop, OrderID: existing.ID, Message: "orden ya existente"}, nil
	}

	order := &entity.Order{
		ID:                 entity.NewOrderID(),
		IncludedRequestIDs: []string{req.ID},
		Vendor:             vendor.Detect(req.PartLink),
		PartName:           strings.TrimSpace(req.PartName),
		SKU:                strings.TrimSpace(req.SKU),
		Quantity:           req.Quantity,
		ShippingMethod:     req.ShippingMethod(),
		Status:             entity.OrderAwaitingPurchase,
	}
	if req.EstUnitPrice != nil {
		price := *req.EstUnitPrice
		order.UnitPrice = &price
		if req.Quantity > 0 {
			total := price.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)
			order.TotalCost = &total
		}
	}
	if err := e.orders.Create(ctx, order); err != nil {
		return entity.TransitionResult{}, fmt.Errorf("crear orden: %w", err)
	}

	req.AppendNote(e.now(), "approved: order "+order.ID+" created")
	if err := e.requests.Save(ctx, req); err != nil {
		return entity.TransitionResult{}, err
	}
	if e.announcer != nil {
		e.announcer.RequestApproved(ctx, req, order)
	}
	log.Info().Str("order_id", order.ID).Str("vendor", order.Vendor).Msg("order created")
	return entity.TransitionResult{Outcome: entity.OutcomeApplied, OrderID: order.ID}, nil
}

func (e *Engine) markOrdered(ctx context.Context, log zerolog.Logger, req *entity.Request, input entity.TransitionInput) (entity.TransitionResult, error) {
	order, err := e.orders.FindByRequestID(ctx, req.ID)
	if err != nil {
		return entity.TransitionResult{}, err
	}
	if order == nil {
		log.Warn().Msg("ordered without a linked order, nothing to update")
		return entity.TransitionResult{Outcome: entity.OutcomeNoop, Message: "sin orden vinculada"}, nil
	}
	switch {
	case input.OrderDate != nil:
		d := input.OrderDate.UTC()
		order.OrderDate = &d
	case order.OrderDate == nil:
		today := e.now().UTC()
		order.OrderDate = &today
	}
	if t := strings.TrimSpace(input.Tracking); t != "" {
		order.Tracking = t
	}
	order.Status = entity.OrderOrdered
	if err := e.orders.Save(ctx, order); err != nil {
		return entity.TransitionResult{}, fmt.Errorf("actualizar orden %s: %w", order.ID, err)
	}

	note := "ordered: " + order.ID
	if order.Tracking != "" {
		note += " tracking " + order.Tracking
	}
	req.AppendNote(e.now(), note)
	if err := e.requests.Save(ctx, req); err != nil {
		return entity.TransitionResult{}, err
	}
	return entity.TransitionResult{Outcome: entity.OutcomeApplied, OrderID: order.ID}, nil
}

func (e *Engine) receive(ctx context.Context, log zerolog.Logger, req *entity.Request, edit entity.CellEdit, input entity.TransitionInput) (entity.TransitionResult, error) {
	order, err := e.orders.FindByRequestID(ctx, req.ID)
	if err != nil {
		return entity.TransitionResult{}, err
	}
	if order != nil && order.ReceivedDate != nil && order.Status == entity.OrderReceived {
		log.Info().Str("order_id", order.ID).Msg("order already received, skipping")
		return entity.TransitionResult{Outcome: entity.OutcomeNoop, OrderID: order.ID, Message: "orden ya recibida"}, nil
	}

	qty := req.Quantity
	if qty <= 0 && order != nil {
		qty = order.Quantity
	}
	if qty <= 0 {
		qty = input.Quantity
	}
	if qty <= 0 {
		p := e.openPending(req.ID, entity.PendingQuantity, edit, input,
			fmt.Sprintf("Cantidad recibida para %s", req.ID))
		log.Info().Str("pending_id", p.ID).Msg("received needs a quantity")
		return entity.TransitionResult{Outcome: entity.OutcomePending, Pending: &p}, nil
	}
	req.Quantity = qty
	fillIdentity(req, order)

	var orderID, vendorName string
	if order != nil {
		now := e.now().UTC()
		order.ReceivedDate = &now
		order.Status = entity.OrderReceived
		if err := e.orders.Save(ctx, order); err != nil {
			return entity.TransitionResult{}, fmt.Errorf("actualizar orden %s: %w", order.ID, err)
		}
		orderID, vendorName = order.ID, order.Vendor
	}
	if vendorName == "" {
		vendorName = vendor.Detect(req.PartLink)
	}

	location := strings.TrimSpace(input.Location)
	if location == "" {
		req.AppendNote(e.now(), fmt.Sprintf("received: qty %d, awaiting storage location", qty))
		if err := e.requests.Save(ctx, req); err != nil {
			return entity.TransitionResult{}, err
		}
		p := e.openPending(req.ID, entity.PendingStorageLocation, edit, input,
			fmt.Sprintf("Ubicación de almacenamiento para %d x %s", qty, inventoryKey(req)))
		log.Info().Str("pending_id", p.ID).Msg("received without location, inventory not reconciled")
		return entity.TransitionResult{Outcome: entity.OutcomePending, OrderID: orderID, Pending: &p}, nil
	}

	res := e.reconcile(ctx, log, req, vendorName, qty, location)
	res.OrderID = orderID
	if err := e.requests.Save(ctx, req); err != nil {
		return entity.TransitionResult{}, err
	}
	return res, nil
}

// reconcile suma la cantidad recibida al inventario y anota el resultado en el Request.
// Un fallo del inventario no deshace la recepción: el resultado queda parcial.
func (e *Engine) reconcile(ctx context.Context, log zerolog.Logger, req *entity.Request, vendorName string, qty int, location string) entity.TransitionResult {
	rec, err := e.reconciler.Upsert(ctx, entity.InventoryRow{
		SKU:      inventoryKey(req),
		Vendor:   vendorName,
		Name:     strings.TrimSpace(req.PartName),
		Location: location,
		Quantity: qty,
	})
	if err != nil {
		log.Error().Err(err).Str("location", location).Msg("inventory reconciliation failed")
		req.AppendNote(e.now(), fmt.Sprintf("received: qty %d, inventory update failed", qty))
		return entity.TransitionResult{Outcome: entity.OutcomePartial, Message: "inventario sin conciliar"}
	}
	req.InventoryOnHand = enrichment.OnHandHint(rec)
	req.AppendNote(e.now(), fmt.Sprintf("received: qty %d into %s (%d on hand)", qty, location, rec.TotalQuantity))
	log.Info().Str("location", location).Int("on_hand", rec.TotalQuantity).Msg("inventory reconciled")
	return entity.TransitionResult{Outcome: entity.OutcomeApplied}
}

func (e *Engine) complete(ctx context.Context, log zerolog.Logger, req *entity.Request) (entity.TransitionResult, error) {
	req.AppendNote(e.now(), "complete: archived")
	if err := e.requests.Save(ctx, req); err != nil {
		return entity.TransitionResult{}, err
	}
	log.Info().Msg("request archived")
	return entity.TransitionResult{Outcome: entity.OutcomeApplied}, nil
}

func (e *Engine) deny(ctx context.Context, log zerolog.Logger, req *entity.Request, input entity.TransitionInput) (entity.TransitionResult, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		if err := e.requests.SetStatus(ctx, req.RowIndex, string(entity.StatusUnderReview)); err != nil {
			return entity.TransitionResult{}, err
		}
		log.Warn().Msg("denial without reason, back to review")
		return entity.TransitionResult{
			Status:  entity.StatusUnderReview,
			Outcome: entity.OutcomeRejected,
			Message: "se requiere un motivo para denegar",
		}, nil
	}
	req.AppendNote(e.now(), "denied: "+reason)
	if err := e.requests.Save(ctx, req); err != nil {
		return entity.TransitionResult{}, err
	}
	if e.announcer != nil {
		e.announcer.RequestDenied(ctx, req, reason)
	}
	return entity.TransitionResult{Outcome: entity.OutcomeApplied}, nil
}

func (e *Engine) openPending(requestID, kind string, edit entity.CellEdit, input entity.TransitionInput, prompt string) entity.PendingInput {
	p := entity.PendingInput{
		ID:        newPendingID(),
		RequestID: requestID,
		Kind:      kind,
		Edit:      edit,
		Input:     input,
		Prompt:    prompt,
		CreatedAt: e.now().UTC(),
	}
	e.pending.Put(p)
	return p
}

// ResolvePending reanuda una transición con el dato que faltaba.
func (e *Engine) ResolvePending(ctx context.Context, id string, values entity.TransitionInput) (entity.TransitionResult, error) {
	var res entity.TransitionResult
	err := e.queue.Do(ctx, func(ctx context.Context) error {
		p, req, err := e.loadPending(ctx, id)
		if err != nil {
			return err
		}
		log := e.log.With().Str("request_id", req.ID).Str("pending_id", id).Logger()

		switch p.Kind {
		case entity.PendingQuantity:
			if values.Quantity <= 0 {
				return domain.NewValidationError("quantity", "debe ser mayor que 0")
			}
			input := p.Input
			input.Quantity = values.Quantity
			if loc := strings.TrimSpace(values.Location); loc != "" {
				input.Location = loc
			}
			e.pending.Remove(id)
			res, err = e.receive(ctx, log, req, p.Edit, input)
		case entity.PendingStorageLocation:
			location := strings.TrimSpace(values.Location)
			if location == "" {
				return domain.NewValidationError("location", "es requerida")
			}
			e.pending.Remove(id)
			vendorName := vendor.Detect(req.PartLink)
			order, ferr := e.orders.FindByRequestID(ctx, req.ID)
			if ferr != nil {
				return ferr
			}
			if order != nil && order.Vendor != "" {
				vendorName = order.Vendor
			}
			res = e.reconcile(ctx, log, req, vendorName, req.Quantity, location)
			if order != nil {
				res.OrderID = order.ID
			}
			err = e.requests.Save(ctx, req)
		default:
			return fmt.Errorf("pendiente %s: tipo desconocido %q", id, p.Kind)
		}
		if err != nil {
			return err
		}
		res.RequestID = req.ID
		if res.Status == "" {
			res.Status = entity.StatusReceived
		}
		metrics.TransitionsTotal.WithLabelValues(string(entity.StatusReceived), res.Outcome).Inc()
		return nil
	})
	return res, err
}

// CancelPending descarta una transición en espera.
// Sin cantidad la recepción no ocurrió y el estado vuelve al valor anterior.
// Sin ubicación la recepción sí ocurrió: el estado se mantiene y el inventario queda sin conciliar.
func (e *Engine) CancelPending(ctx context.Context, id string) (entity.TransitionResult, error) {
	var res entity.TransitionResult
	err := e.queue.Do(ctx, func(ctx context.Context) error {
		p, req, err := e.loadPending(ctx, id)
		if err != nil {
			return err
		}
		e.pending.Remove(id)
		res = entity.TransitionResult{RequestID: req.ID, Outcome: entity.OutcomeNoop}

		switch p.Kind {
		case entity.PendingQuantity:
			if err := e.requests.SetStatus(ctx, req.RowIndex, p.Edit.OldValue); err != nil {
				return err
			}
			res.Status = entity.RequestStatus(p.Edit.OldValue)
			res.Message = "recepción cancelada, estado revertido"
		default:
			req.AppendNote(e.now(), "received: storage location not provided, inventory not updated")
			if err := e.requests.Save(ctx, req); err != nil {
				return err
			}
			res.Status = entity.StatusReceived
			res.Message = "inventario sin conciliar"
		}
		e.log.Info().Str("request_id", req.ID).Str("pending_id", id).Str("kind", p.Kind).Msg("pending input cancelled")
		return nil
	})
	return res, err
}

func (e *Engine) loadPending(ctx context.Context, id string) (entity.PendingInput, *entity.Request, error) {
	p, ok := e.pending.Get(id)
	if !ok {
		return p, nil, fmt.Errorf("pendiente %s: %w", id, domain.ErrNotFound)
	}
	req, err := e.requests.GetByID(ctx, p.RequestID)
	if err != nil {
		return p, nil, err
	}
	if req == nil {
		e.pending.Remove(id)
		return p, nil, fmt.Errorf("request %s: %w", p.RequestID, domain.ErrNotFound)
	}
	if req.Status != entity.StatusReceived {
		e.pending.Remove(id)
		return p, nil, fmt.Errorf("request %s ya no está en Received: %w", req.ID, domain.ErrConflict)
	}
	return p, req, nil
}

// fillIdentity completa nombre y SKU vacíos: Request, luego Order, luego la URL.
func fillIdentity(req *entity.Request, order *entity.Order) {
	if order != nil {
		if strings.TrimSpace(req.PartName) == "" {
			req.PartName = order.PartName
		}
		if strings.TrimSpace(req.SKU) == "" {
			req.SKU = order.SKU
		}
	}
	if req.PartLink == "" || (strings.TrimSpace(req.PartName) != "" && strings.TrimSpace(req.SKU) != "") {
		return
	}
	derived := vendor.DeriveFromURL(req.PartLink)
	synthetic := vendor.SyntheticIdentity(req.PartLink)
	if strings.TrimSpace(req.PartName) == "" {
		req.PartName = firstNonEmpty(derived.PartName, synthetic.PartName)
	}
	if strings.TrimSpace(req.SKU) == "" {
		req.SKU = firstNonEmpty(derived.SKU, synthetic.SKU)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// inventoryKey SKU con el que se registra la pieza; sin SKU se usa el nombre.
func inventoryKey(req *entity.Request) string {
	if sku := strings.TrimSpace(req.SKU); sku != "" {
		return sku
	}
	return strings.TrimSpace(req.PartName)
}
