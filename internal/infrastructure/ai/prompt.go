package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/application/ports"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// temperature baja: la extracción debe ser determinista.
const temperature = 0.1

const systemPrompt = `You extract product identity from vendor web pages for an FRC robotics team.
Return ONLY a JSON object (no markdown, no prose) with exactly these keys:
{
  "partName": "<product name as shown on the page, or empty string>",
  "sku": "<vendor part number / SKU exactly as printed on the page, or empty string>",
  "estimatedPrice": <unit price in USD as a number, or null>,
  "stockStatus": "<In Stock | Out of Stock | Backorder | Unknown>"
}

Rules:
- Never invent a SKU. If the page does not print one, return "".
- If the page lists several variants, use the hint to pick one; otherwise pick the default variant.
- estimatedPrice is the single-unit price without currency symbols.`

// Option configura un adaptador.
type Option func(*options)

type options struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint reemplaza la URL de la API (pruebas, proxies).
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithHTTPClient reemplaza el cliente HTTP.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// userPrompt arma el mensaje con URL, proveedor, pista y fragmento de la página.
func userPrompt(req ports.ExtractionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\nVendor: %s\n", req.URL, req.Vendor)
	if hint := strings.TrimSpace(req.Hint); hint != "" {
		fmt.Fprintf(&b, "Requester hint: %s\n", hint)
	}
	b.WriteString("\nPage text:\n")
	b.WriteString(req.Snippet)
	return b.String()
}

// extractionPayload JSON que esperamos del modelo. estimatedPrice puede venir como número o texto.
type extractionPayload struct {
	PartName       string          `json:"partName"`
	SKU            string          `json:"sku"`
	EstimatedPrice json.RawMessage `json:"estimatedPrice"`
	StockStatus    string          `json:"stockStatus"`
}

// jsonBlockRe extrae el primer objeto JSON aunque el modelo lo envuelva en texto.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseExtraction convierte el texto del modelo en EnrichmentResult.
func parseExtraction(text string) (*entity.EnrichmentResult, error) {
	clean := extractJSON(text)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON en la respuesta del modelo")
	}
	var p extractionPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de extracción: %w", err)
	}
	return &entity.EnrichmentResult{
		PartName:       strings.TrimSpace(p.PartName),
		SKU:            strings.TrimSpace(p.SKU),
		EstimatedPrice: parsePrice(p.EstimatedPrice),
		StockStatus:    strings.TrimSpace(p.StockStatus),
	}, nil
}

func parsePrice(raw json.RawMessage) *decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	s = strings.NewReplacer("$", "", ",", "", "USD", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.IsZero() {
		return nil
	}
	d = d.Round(2)
	return &d
}

// extractJSON extrae el primer objeto JSON de un texto libre.
//  1. Elimina bloques de código markdown (```json … ``` o ``` … ```).
//  2. Si no empieza con '{', captura el primer bloque { … } con regex.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
