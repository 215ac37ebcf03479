// Package metrics exposes request counters through the OpenTelemetry
// Prometheus exporter.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

const (
	CompletedCountName = "http/server/completed_count"
	DurationName       = "http/server/duration_ms"
)

var (
	methodKey = attribute.Key("method")
	routeKey  = attribute.Key("route")
	statusKey = attribute.Key("status")
)

type Metrics struct {
	exporter  *prometheus.Exporter
	completed metric.Int64Counter
	duration  metric.Float64ValueRecorder
}

// New installs a Prometheus backed meter provider as the global one and
// creates the server instruments on it.
func New(serviceName string) (*Metrics, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, err
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(serviceName)

	return &Metrics{
		exporter: exporter,
		completed: metric.Must(meter).NewInt64Counter(
			CompletedCountName,
			metric.WithDescription("Count of completed requests, by HTTP method, route and response status"),
		),
		duration: metric.Must(meter).NewFloat64ValueRecorder(
			DurationName,
			metric.WithDescription("Request latency in milliseconds, by HTTP method and route"),
		),
	}, nil
}

// Handler serves the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.exporter
}

// Middleware records every request once it completes.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		m.completed.Add(r.Context(), 1,
			methodKey.String(r.Method),
			routeKey.String(route),
			statusKey.String(strconv.Itoa(status)),
		)
		m.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000,
			methodKey.String(r.Method),
			routeKey.String(route),
		)
	})
}
