// Package metrics expone los contadores Prometheus del servicio: transiciones de estado,
// resultados del enriquecimiento, notificaciones y tráfico HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partbot"

var (
	// TransitionsTotal cuenta eventos de estado procesados por estado destino y resultado
	// (applied, rejected, reverted, pending, ignored, failed).
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of request status transitions by target status and outcome",
		},
		[]string{"status", "outcome"},
	)

	// EnrichmentTotal cuenta ejecuciones del pipeline de enriquecimiento por resultado.
	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_total",
			Help:      "Total number of enrichment runs by outcome",
		},
		[]string{"outcome"},
	)

	// NotificationsTotal cuenta webhooks enviados por tipo de evento y resultado.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of webhook notifications by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// QueueDepth número de eventos esperando en la cola serializada del workflow.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "workflow_queue_depth",
		Help:      "Number of status events waiting in the workflow queue",
	})

	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Middleware registra contador y duración por ruta. Usa la ruta registrada (c.Route().Path)
// y no la URL concreta para no disparar la cardinalidad con ids.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		statusStr := strconv.Itoa(status)

		requestCounter.WithLabelValues(c.Method(), path, statusStr).Inc()
		requestDuration.WithLabelValues(c.Method(), path, statusStr).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone /metrics en formato Prometheus sobre Fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
