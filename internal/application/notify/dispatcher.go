package notify

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/application/ports"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/pkg/metrics"
)

// Colores de los embeds.
const (
	ColorNewRequest = 3447003  // azul
	ColorApproved   = 3066993  // verde
	ColorDenied     = 15158332 // rojo
)

// Dispatcher arma las notificaciones del ciclo de vida y las envía por el Notifier.
// Un solo intento por evento; los errores se registran y nunca llegan al llamador.
type Dispatcher struct {
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewDispatcher construye el despachador. notifier nil desactiva el envío.
func NewDispatcher(notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log, now: time.Now}
}

// SetClock reemplaza el reloj (pruebas).
func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

// NewRequest anuncia un Request recién creado al canal de compras.
func (d *Dispatcher) NewRequest(ctx context.Context, req *entity.Request) {
	fields := []entity.NotificationField{
		{Name: "Requester", Value: req.Requester, Inline: true},
		{Name: "Subsystem", Value: req.Subsystem, Inline: true},
		{Name: "Priority", Value: req.Priority, Inline: true},
		{Name: "Part", Value: req.PartName, Inline: true},
		{Name: "SKU", Value: req.SKU, Inline: true},
		{Name: "Quantity", Value: quantity(req.Quantity), Inline: true},
		{Name: "Est. Total", Value: money(req.TotalEstCost), Inline: true},
		{Name: "Needed By", Value: date(req.NeededBy), Inline: true},
	}
	if req.ExpeditedShipping {
		fields = append(fields, entity.NotificationField{Name: "Shipping", Value: entity.ShippingExpedited, Inline: true})
	}
	if req.InventoryOnHand != "" {
		fields = append(fields, entity.NotificationField{Name: "Inventory", Value: req.InventoryOnHand})
	}
	fields = append(fields, entity.NotificationField{Name: "Link", Value: req.PartLink})

	d.send(ctx, ports.ChannelProcurement, entity.Notification{
		Kind:   entity.NotifyNewRequest,
		Title:  "New Part Request: " + req.ID,
		Fields: fields,
		Color:  ColorNewRequest,
	})
}

// RequestApproved anuncia la aprobación y la orden creada.
func (d *Dispatcher) RequestApproved(ctx context.Context, req *entity.Request, order *entity.Order) {
	d.send(ctx, ports.ChannelProcurement, entity.Notification{
		Kind:  entity.NotifyApproved,
		Title: "Request Approved: " + req.ID,
		Fields: []entity.NotificationField{
			{Name: "Part", Value: firstNonEmpty(order.PartName, order.SKU), Inline: true},
			{Name: "Quantity", Value: quantity(order.Quantity), Inline: true},
			{Name: "Vendor", Value: order.Vendor, Inline: true},
			{Name: "Shipping", Value: order.ShippingMethod, Inline: true},
			{Name: "Total", Value: money(order.TotalCost), Inline: true},
			{Name: "Requester", Value: req.Requester, Inline: true},
			{Name: "Order", Value: order.ID},
		},
		Color: ColorApproved,
	})
}

// RequestDenied informa al solicitante el motivo de la denegación.
func (d *Dispatcher) RequestDenied(ctx context.Context, req *entity.Request, reason string) {
	d.send(ctx, ports.ChannelRequester, entity.Notification{
		Kind:  entity.NotifyDenied,
		Title: "Request Denied: " + req.ID,
		Fields: []entity.NotificationField{
			{Name: "Part", Value: firstNonEmpty(req.PartName, req.SKU, req.PartLink), Inline: true},
			{Name: "Requester", Value: req.Requester, Inline: true},
			{Name: "Reason", Value: reason},
		},
		Color: ColorDenied,
	})
}

func (d *Dispatcher) send(ctx context.Context, channel string, n entity.Notification) {
	if d.notifier == nil {
		return
	}
	n.Timestamp = d.now().UTC()
	log := d.log.With().Str("kind", n.Kind).Str("channel", channel).Logger()

	if err := d.notifier.Send(ctx, channel, n); err != nil {
		outcome := "failed"
		if errors.Is(err, ports.ErrChannelNotConfigured) {
			outcome = "skipped"
			log.Debug().Msg("notification channel not configured")
		} else {
			log.Warn().Err(err).Msg("notification failed")
		}
		metrics.NotificationsTotal.WithLabelValues(n.Kind, outcome).Inc()
		return
	}
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "sent").Inc()
	log.Debug().Msg("notification sent")
}

func quantity(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return "$" + d.StringFixed(2)
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
