package ports

import (
	"context"
	"errors"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// Canales de notificación.
const (
	ChannelProcurement = "procurement"
	ChannelRequester   = "requester"
)

// ErrChannelNotConfigured el canal no tiene destino configurado.
var ErrChannelNotConfigured = errors.New("canal de notificación sin configurar")

// Notifier envía una notificación al canal indicado. Un solo intento.
type Notifier interface {
	Send(ctx context.Context, channel string, n entity.Notification) error
}
