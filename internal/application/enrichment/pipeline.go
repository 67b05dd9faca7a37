package enrichment

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/internal/application/ports"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/inventory"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/internal/domain/vendor"
	"github.com/pumpkinbots/partbot/pkg/logger"
	"github.com/pumpkinbots/partbot/pkg/metrics"
)

// Resultados del pipeline (etiqueta outcome de la métrica).
const (
	OutcomeApplied     = "applied"
	OutcomeNothing     = "nothing_new"
	OutcomeNoLink      = "no_link"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeFailed      = "failed"
)

// Report describe qué hizo el pipeline con un Request.
type Report struct {
	Outcome      string
	Fields       []string // campos escritos
	SKURejected  string   // SKU del modelo descartado por no aparecer en la página
	UsedFallback bool
	OnHandHint   string
}

// Pipeline completa la identidad de una pieza a partir de su enlace.
// Nunca sobrescribe un campo con valor y nunca devuelve error: cualquier fallo
// degrada a "sin enriquecimiento" y queda en el log.
type Pipeline struct {
	fetcher        ports.PageFetcher
	extractor      ports.PartExtractor
	requests       repository.RequestRepository
	reconciler     *inventory.Reconciler
	log            zerolog.Logger
	extractTimeout time.Duration
	now            func() time.Time
}

// NewPipeline construye el pipeline. extractor puede ser nil (solo fallback estructural).
func NewPipeline(
	fetcher ports.PageFetcher,
	extractor ports.PartExtractor,
	requests repository.RequestRepository,
	reconciler *inventory.Reconciler,
	log zerolog.Logger,
	extractTimeout time.Duration,
) *Pipeline {
	return &Pipeline{
		fetcher:        fetcher,
		extractor:      extractor,
		requests:       requests,
		reconciler:     reconciler,
		log:            log,
		extractTimeout: extractTimeout,
		now:            time.Now,
	}
}

// Enrich ejecuta los pasos fetch → extracción → validación → fallback → merge → pista de inventario.
// hint es el texto libre del solicitante (notas) para elegir entre variantes de una página.
func (p *Pipeline) Enrich(ctx context.Context, req *entity.Request, hint string) (report Report) {
	log := logger.ForContext(ctx, p.log).With().Str("request_id", req.ID).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("enrichment aborted")
			report = Report{Outcome: OutcomeFailed}
		}
		metrics.EnrichmentTotal.WithLabelValues(report.Outcome).Inc()
	}()

	link := strings.TrimSpace(req.PartLink)
	if link == "" {
		return Report{Outcome: OutcomeNoLink}
	}
	vendorName := vendor.Detect(link)

	page, err := p.fetcher.Fetch(ctx, link)
	if err != nil {
		log.Warn().Err(err).Str("url", link).Msg("enrichment: fetch failed, skipping")
		return Report{Outcome: OutcomeFetchFailed}
	}

	result := p.extract(ctx, log, ports.ExtractionRequest{
		URL: link, Vendor: vendorName, Hint: hint, Snippet: page.Snippet,
	})

	report.SKURejected = ValidateSKU(result, page.FullText)
	if report.SKURejected != "" {
		log.Info().Str("sku", report.SKURejected).Msg("enrichment: SKU not present in page text, discarded")
	}

	result.PartName = strings.TrimSpace(result.PartName)
	result.SKU = strings.TrimSpace(result.SKU)
	if result.PartName == "" || result.SKU == "" {
		d := vendor.DeriveFromURL(link)
		if result.PartName == "" && d.PartName != "" {
			result.PartName = d.PartName
			report.UsedFallback = true
		}
		if result.SKU == "" && d.SKU != "" {
			result.SKU = d.SKU
			report.UsedFallback = true
		}
	}

	report.Fields = Merge(req, result)
	if len(report.Fields) == 0 {
		report.Outcome = OutcomeNothing
	} else {
		report.Outcome = OutcomeApplied
		req.AppendNote(p.now(), "enriched: "+strings.Join(report.Fields, ", "))
	}

	if slices.Contains(report.Fields, "sku") {
		report.OnHandHint = p.onHandHint(ctx, log, req.SKU)
		if report.OnHandHint != "" {
			req.InventoryOnHand = report.OnHandHint
		}
	}

	if report.Outcome == OutcomeApplied {
		if err := p.requests.Save(ctx, req); err != nil {
			log.Error().Err(err).Msg("enrichment: save failed")
			return Report{Outcome: OutcomeFailed}
		}
		log.Info().Strs("fields", report.Fields).Bool("fallback", report.UsedFallback).Msg("request enriched")
	}
	return report
}

func (p *Pipeline) extract(ctx context.Context, log zerolog.Logger, in ports.ExtractionRequest) *entity.EnrichmentResult {
	empty := &entity.EnrichmentResult{}
	if p.extractor == nil {
		return empty
	}
	if p.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.extractTimeout)
		defer cancel()
	}
	res, err := p.extractor.ExtractPartIdentity(ctx, in)
	if err != nil || res == nil {
		log.Warn().Err(err).Msg("enrichment: extraction failed, using empty result")
		return empty
	}
	return res
}

func (p *Pipeline) onHandHint(ctx context.Context, log zerolog.Logger, sku string) string {
	if p.reconciler == nil {
		return ""
	}
	rec, err := p.reconciler.ResolveBySku(ctx, sku)
	if err != nil {
		log.Warn().Err(err).Msg("enrichment: inventory lookup failed")
		return ""
	}
	return OnHandHint(rec)
}

// ValidateSKU descarta el SKU si su forma normalizada no aparece literalmente en el texto
// normalizado de la página. Devuelve el SKU descartado o "".
func ValidateSKU(res *entity.EnrichmentResult, pageText string) string {
	sku := normalizeText(res.SKU)
	if sku == "" {
		res.SKU = ""
		return ""
	}
	if strings.Contains(normalizeText(pageText), sku) {
		return ""
	}
	rejected := res.SKU
	res.SKU = ""
	return rejected
}

// Merge escribe cada campo solo si el slot del Request está vacío. Devuelve los campos escritos.
func Merge(req *entity.Request, res *entity.EnrichmentResult) []string {
	var fields []string
	if strings.TrimSpace(req.PartName) == "" && strings.TrimSpace(res.PartName) != "" {
		req.PartName = strings.TrimSpace(res.PartName)
		fields = append(fields, "partName")
	}
	if strings.TrimSpace(req.SKU) == "" && strings.TrimSpace(res.SKU) != "" {
		req.SKU = strings.TrimSpace(res.SKU)
		fields = append(fields, "sku")
	}
	if req.EstUnitPrice == nil && res.EstimatedPrice != nil {
		price := *res.EstimatedPrice
		req.EstUnitPrice = &price
		req.RecomputeCost()
		fields = append(fields, "estimatedPrice")
	}
	if strings.TrimSpace(req.VendorStock) == "" && strings.TrimSpace(res.StockStatus) != "" {
		req.VendorStock = strings.TrimSpace(res.StockStatus)
		fields = append(fields, "stockStatus")
	}
	return fields
}

// OnHandHint texto informativo de inventario para el Request.
func OnHandHint(rec *entity.InventoryRecord) string {
	if rec == nil || rec.TotalQuantity <= 0 {
		return "None on hand"
	}
	if len(rec.Locations) == 0 {
		return fmt.Sprintf("%d on hand", rec.TotalQuantity)
	}
	return fmt.Sprintf("%d on hand (%s)", rec.TotalQuantity, strings.Join(rec.Locations, ", "))
}

// normalizeText minúsculas y espacios colapsados.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
