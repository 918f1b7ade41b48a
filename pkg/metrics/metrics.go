// Package metrics exposes Prometheus counters for filesystem operations
// and HTTP requests.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	opsTotal        *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the mcvr collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	return &Metrics{
		registry: reg,
		opsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcvr_operations_total",
				Help: "Filesystem operations by operation and outcome",
			},
			[]string{"op", "result"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcvr_bytes_total",
				Help: "Bytes moved through uploads, downloads and archives",
			},
			[]string{"direction"},
		),
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcvr_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcvr_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveOp counts one operation. Failures are labelled with their error
// kind.
func (m *Metrics) ObserveOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = vr.KindOf(err).String()
	}

	m.opsTotal.WithLabelValues(op, result).Inc()
}

func (m *Metrics) AddBytes(direction string, n int64) {
	if n > 0 {
		m.bytesTotal.WithLabelValues(direction).Add(float64(n))
	}
}

// Middleware records every request against its route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var (
				he *echo.HTTPError
				ve *vr.Error
			)
			switch {
			case errors.As(err, &he):
				status = he.Code
			case errors.As(err, &ve):
				status = ve.HTTPStatus()
			}

			route := c.Path()
			m.requestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
