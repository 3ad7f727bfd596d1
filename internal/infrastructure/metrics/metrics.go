package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registro Prometheus del servicio: HTTP y ciclo de facturación.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upserts         *prometheus.CounterVec
	storageMB       prometheus.Gauge
	quotaRejected   prometheus.Counter
	lookupMisses    prometheus.Counter
	ledgerWrites    *prometheus.CounterVec
}

// New inicializa el registro y los colectores.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gst_http_requests_total",
			Help: "Peticiones HTTP por ruta y código.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gst_http_request_duration_seconds",
			Help:    "Duración de peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gst_invoice_upserts_total",
			Help: "Facturas guardadas, por resultado (created|updated).",
		}, []string{"result"}),
		storageMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gst_storage_estimated_megabytes",
			Help: "Tamaño estimado de las colecciones en la última verificación de cuota.",
		}),
		quotaRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gst_quota_rejections_total",
			Help: "Escrituras rechazadas por cuota de almacenamiento.",
		}),
		lookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gst_hsn_lookup_misses_total",
			Help: "Códigos HSN sin tarifa encontrados al calcular impuestos.",
		}),
		ledgerWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gst_ledger_writes_total",
			Help: "Escrituras del libro tabular por resultado (ok|error).",
		}, []string{"result"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.upserts, m.storageMB, m.quotaRejected, m.lookupMisses, m.ledgerWrites,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registerer expone el registro para colectores adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Middleware registra conteo y duración por ruta de Fiber.
func (m *Metrics) Middleware() fiber.Handler {
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
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) ObserveUpsert(created bool) {
	if created {
		m.upserts.WithLabelValues("created").Inc()
		return
	}
	m.upserts.WithLabelValues("updated").Inc()
}

func (m *Metrics) ObserveQuota(sizeMB float64, exceeded bool) {
	m.storageMB.Set(sizeMB)
	if exceeded {
		m.quotaRejected.Inc()
	}
}

func (m *Metrics) ObserveLookupMiss(codes int) {
	m.lookupMisses.Add(float64(codes))
}

// ObserveLedgerWrite lo usa el escritor del libro tabular.
func (m *Metrics) ObserveLedgerWrite(err error) {
	if err != nil {
		m.ledgerWrites.WithLabelValues("error").Inc()
		return
	}
	m.ledgerWrites.WithLabelValues("ok").Inc()
}
