package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/application/enrichment"
	"github.com/pumpkinbots/partbot/internal/application/workflow"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/inventory"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/pkg/logger"
)

// Runner serializa las escrituras con la máquina de estados.
type Runner interface {
	Do(ctx context.Context, task workflow.Task) error
}

// Announcer anuncia los Requests recién creados.
type Announcer interface {
	NewRequest(ctx context.Context, req *entity.Request)
}

// UseCase atiende las acciones del endpoint de intake.
type UseCase struct {
	requests   repository.RequestRepository
	orders     repository.OrderRepository
	reconciler *inventory.Reconciler
	pipeline   *enrichment.Pipeline
	announcer  Announcer
	runner     Runner
	version    string
	log        zerolog.Logger
	now        func() time.Time
}

// NewUseCase construye el caso de uso. pipeline nil desactiva el enriquecimiento.
func NewUseCase(
	requests repository.RequestRepository,
	orders repository.OrderRepository,
	reconciler *inventory.Reconciler,
	pipeline *enrichment.Pipeline,
	announcer Announcer,
	runner Runner,
	version string,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		requests:   requests,
		orders:     orders,
		reconciler: reconciler,
		pipeline:   pipeline,
		announcer:  announcer,
		runner:     runner,
		version:    version,
		log:        log,
		now:        time.Now,
	}
}

// Version versión reportada en meta.version.
func (uc *UseCase) Version() string { return uc.version }

// Dispatch ejecuta la acción indicada. Los errores de protocolo son *dto.EnvelopeError.
func (uc *UseCase) Dispatch(ctx context.Context, in dto.IntakeRequest) (any, error) {
	switch strings.TrimSpace(in.Action) {
	case dto.ActionHealth:
		return uc.Health(), nil
	case dto.ActionDiscordRequest, dto.ActionCreateRequest:
		return uc.CreateRequest(ctx, in)
	case dto.ActionInventory:
		return uc.Inventory(ctx, in.SKU, in.Search)
	case dto.ActionOrderStatus:
		return uc.OrderStatus(ctx, in.RequestID, in.OrderID)
	case dto.ActionOpenOrders:
		return uc.OpenOrders(ctx)
	}
	return nil, &dto.EnvelopeError{
		Code:    dto.CodeInvalidAction,
		Message: fmt.Sprintf("Unknown action: %s", in.Action),
		Details: map[string]any{"receivedAction": in.Action, "validActions": dto.ValidActions},
	}
}

// Health estado del servicio.
func (uc *UseCase) Health() *dto.HealthResult {
	return &dto.HealthResult{Status: "healthy", Timestamp: uc.now().UTC(), Version: uc.version}
}

// CreateRequest valida, persiste, enriquece y anuncia un Request nuevo.
// El enriquecimiento corre dentro de la misma tarea serializada y nunca hace fallar la creación.
func (uc *UseCase) CreateRequest(ctx context.Context, in dto.IntakeRequest) (*dto.CreatedRequest, error) {
	req, err := newRequest(in, uc.now())
	if err != nil {
		return nil, err
	}
	ctx = logger.ContextWithTraceID(ctx, in.TraceID)
	log := logger.ForContext(ctx, uc.log).With().Str("request_id", req.ID).Logger()

	var report enrichment.Report
	err = uc.runner.Do(ctx, func(ctx context.Context) error {
		if err := uc.requests.Create(ctx, req); err != nil {
			return fmt.Errorf("crear request: %w", err)
		}
		log.Info().Int("row", req.RowIndex).Msg("request created")
		if uc.pipeline != nil {
			report = uc.pipeline.Enrich(ctx, req, strings.TrimSpace(in.Notes))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if uc.announcer != nil {
		uc.announcer.NewRequest(ctx, req)
	}
	return &dto.CreatedRequest{RequestID: req.ID, Row: req.RowIndex, Enrichment: report.Outcome}, nil
}

// Inventory búsqueda por ubicación, SKU exacto o texto.
func (uc *UseCase) Inventory(ctx context.Context, sku, search string) (*dto.InventoryResult, error) {
	sku, search = strings.TrimSpace(sku), strings.TrimSpace(search)
	out := &dto.InventoryResult{Matches: []dto.InventoryMatch{}}
	if sku == "" && search == "" {
		return out, nil
	}
	records, err := uc.reconciler.Lookup(ctx, sku, search)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out.Matches = append(out.Matches, dto.InventoryMatch{
			SKU:       rec.SKU,
			Vendor:    rec.Vendor,
			Name:      rec.Name,
			Location:  strings.Join(rec.Locations, ", "),
			Quantity:  rec.TotalQuantity,
			Locations: rec.Locations,
		})
	}
	return out, nil
}

// OrderStatus consulta un Request (con sus órdenes) y/o una Order.
func (uc *UseCase) OrderStatus(ctx context.Context, requestID, orderID string) (*dto.OrderStatusResult, error) {
	requestID, orderID = strings.TrimSpace(requestID), strings.TrimSpace(orderID)
	if requestID == "" && orderID == "" {
		return nil, &dto.EnvelopeError{
			Code:    dto.CodeMissingParameter,
			Message: "Either requestId or orderId is required",
			Details: map[string]any{"requiredFields": []string{"requestId", "orderId"}},
		}
	}
	out := &dto.OrderStatusResult{}
	if requestID != "" {
		req, err := uc.requests.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if req == nil {
			return nil, notFound("Request", "requestId", requestID)
		}
		out.Request = ToRequestView(req)
		orders, err := uc.orders.ListByRequestID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		out.Orders = make([]dto.OrderView, 0, len(orders))
		for _, o := range orders {
			out.Orders = append(out.Orders, *ToOrderView(o))
		}
	}
	if orderID != "" {
		order, err := uc.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, notFound("Order", "orderId", orderID)
		}
		out.Order = ToOrderView(order)
	}
	return out, nil
}

// OpenOrders órdenes sin recibir ni cancelar y Requests denegados.
func (uc *UseCase) OpenOrders(ctx context.Context) (*dto.OpenOrdersResult, error) {
	orders, err := uc.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.OpenOrdersResult{Orders: []dto.OrderView{}, Denied: []dto.RequestView{}}
	for _, o := range orders {
		if o.IsOpen() && len(out.Orders) < MaxOpenOrders {
			out.Orders = append(out.Orders, *ToOrderView(o))
		}
	}
	requests, err := uc.requests.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if r.Status == entity.StatusDenied && len(out.Denied) < MaxDenied {
			out.Denied = append(out.Denied, *ToRequestView(r))
		}
	}
	return out, nil
}

func notFound(kind, field, id string) *dto.EnvelopeError {
	return &dto.EnvelopeError{
		Code:    dto.CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{field: id},
	}
}

// ToRequestView proyecta un Request para las respuestas.
func ToRequestView(r *entity.Request) *dto.RequestView {
	v := &dto.RequestView{
		ID:              r.ID,
		Requester:       r.Requester,
		Subsystem:       r.Subsystem,
		PartName:        r.PartName,
		SKU:             r.SKU,
		Link:            r.PartLink,
		Qty:             r.Quantity,
		Priority:        r.Priority,
		NeededBy:        r.NeededBy,
		InventoryOnHand: r.InventoryOnHand,
		VendorStock:     r.VendorStock,
		EstUnitPrice:    r.EstUnitPrice,
		TotalEstCost:    r.TotalEstCost,
		MaxBudget:       r.MaxBudget,
		BudgetStatus:    r.BudgetStatus,
		RequestStatus:   string(r.Status),
		MentorNotes:     r.Notes,
		Shipping:        r.ShippingMethod(),
	}
	if !r.CreatedAt.IsZero() {
		ts := r.CreatedAt
		v.Timestamp = &ts
	}
	return v
}

// ToOrderView proyecta una Order para las respuestas.
func ToOrderView(o *entity.Order) *dto.OrderView {
	return &dto.OrderView{
		OrderID:          o.ID,
		IncludedRequests: strings.Join(o.IncludedRequestIDs, ", "),
		Vendor:           o.Vendor,
		PartName:         o.PartName,
		SKU:              o.SKU,
		Qty:              o.Quantity,
		UnitPrice:        o.UnitPrice,
		TotalCost:        o.TotalCost,
		OrderDate:        o.OrderDate,
		Shipping:         o.ShippingMethod,
		Tracking:         o.Tracking,
		ETA:              o.ETA,
		ReceivedDate:     o.ReceivedDate,
		Status:           string(o.Status),
		MentorNotes:      o.Notes,
	}
}
