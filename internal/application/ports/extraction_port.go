package ports

import (
	"context"

	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// ExtractionRequest datos que recibe el modelo para identificar una pieza en una página.
type ExtractionRequest struct {
	URL     string
	Vendor  string // nombre detectado por vendor.Detect
	Hint    string // texto opcional del solicitante para elegir entre variantes
	Snippet string // texto plano acotado de la página
}

// PartExtractor define el puerto de salida hacia el modelo de extracción.
// Cualquier adaptador (Anthropic, Gemini, mock) implementa esta interfaz.
// El contexto debe llevar timeout; los errores los degrada el pipeline a "sin resultado".
type PartExtractor interface {
	ExtractPartIdentity(ctx context.Context, req ExtractionRequest) (*entity.EnrichmentResult, error)
}
