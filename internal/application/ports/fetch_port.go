package ports

import "context"

// Page texto extraído de una página de proveedor.
// FullText se usa para validar el SKU; Snippet (acotado) para el prompt.
type Page struct {
	URL      string
	FullText string
	Snippet  string
}

// PageFetcher descarga una página y la reduce a texto plano.
// Respuestas no 2xx y fallos de red se devuelven como error.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}
