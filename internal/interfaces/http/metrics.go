package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/taskflow-api/internal/domain"
)

// Metrics métricas HTTP de la API sobre un registry propio (no el global),
// de modo que cada app de test tiene contadores aislados.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authFailures    *prometheus.CounterVec
}

// NewMetrics registra las métricas con el prefijo indicado (ej. "taskflow").
func NewMetrics(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total de peticiones HTTP",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duración de las peticiones HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_failures_total",
				Help: "Peticiones rechazadas por autenticación o autorización",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.authFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware mide cada petición. El label path es la ruta registrada
// (/api/projects/:id), no la URL concreta, para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = statusFor(err)
			}
		}
		path := c.Route().Path
		code := strconv.Itoa(status)

		m.requestsTotal.WithLabelValues(c.Method(), path, code).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		switch status {
		case fiber.StatusUnauthorized:
			m.authFailures.WithLabelValues(string(domain.KindUnauthenticated)).Inc()
		case fiber.StatusForbidden:
			m.authFailures.WithLabelValues(string(domain.KindForbidden)).Inc()
		}
		return err
	}
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry devuelve el registry subyacente.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
