// Package pbmetrics instruments a PocketBase client with Prometheus metrics.
package pbmetrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

const namespace = "pocketbase_client"

// Metrics holds the client request metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics registers the client metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests that reached the server",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "response_size_bytes",
				Help:      "Response body size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of requests that failed before a response was received",
			},
			[]string{"method", "kind"},
		),
	}
}

// Middleware returns a middleware recording every exchange. Place it last in
// the user middlewares so it measures the transport alone.
func (m *Metrics) Middleware() pocketbase.Middleware {
	return pocketbase.MiddlewareFunc(func(ctx context.Context, req *pocketbase.Request, next pocketbase.Handler) (*pocketbase.Response, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		m.RequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

		if err != nil {
			m.ErrorsTotal.WithLabelValues(req.Method, pocketbase.ErrorKindOf(err).String()).Inc()

			return resp, err
		}

		m.RequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
		m.ResponseSize.WithLabelValues(req.Method).Observe(float64(len(resp.Body)))

		return resp, nil
	})
}

// Middleware registers metrics with reg and returns the recording middleware.
func Middleware(reg prometheus.Registerer) pocketbase.Middleware {
	return NewMetrics(reg).Middleware()
}
