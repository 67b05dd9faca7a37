package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pumpkinbots/partbot/internal/application/ports"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

var _ ports.Notifier = (*Notifier)(nil)

// ErrNotConfigured el canal no tiene URL de webhook.
var ErrNotConfigured = ports.ErrChannelNotConfigured

// emptyValue reemplaza valores vacíos: el receptor rechaza campos sin valor.
const emptyValue = "N/A"

// Notifier envía notificaciones como embeds de webhook estilo Discord.
type Notifier struct {
	urls       map[string]string
	httpClient *http.Client
}

// NewNotifier construye el notificador. requesterURL vacío usa el canal de compras.
func NewNotifier(procurementURL, requesterURL string, timeout time.Duration) *Notifier {
	if strings.TrimSpace(requesterURL) == "" {
		requesterURL = procurementURL
	}
	return &Notifier{
		urls: map[string]string{
			ports.ChannelProcurement: strings.TrimSpace(procurementURL),
			ports.ChannelRequester:   strings.TrimSpace(requesterURL),
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color,omitempty"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Encode serializa la notificación al cuerpo del webhook.
func Encode(n entity.Notification) ([]byte, error) {
	fields := make([]embedField, 0, len(n.Fields))
	for _, f := range n.Fields {
		v := strings.TrimSpace(f.Value)
		if v == "" {
			v = emptyValue
		}
		fields = append(fields, embedField{Name: f.Name, Value: v, Inline: f.Inline})
	}
	return json.Marshal(payload{Embeds: []embed{{
		Title:     n.Title,
		Color:     n.Color,
		Fields:    fields,
		Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
	}}})
}

// Send hace un único POST. Cualquier status fuera de 2xx es error.
func (w *Notifier) Send(ctx context.Context, channel string, n entity.Notification) error {
	url := w.urls[channel]
	if url == "" {
		return fmt.Errorf("%s: %w", channel, ErrNotConfigured)
	}
	body, err := Encode(n)
	if err != nil {
		return fmt.Errorf("webhook: serializar: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: POST: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	}
	return nil
}
