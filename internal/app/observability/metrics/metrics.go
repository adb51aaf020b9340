package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal     metric.Int64Counter
	HTTPRequestDuration   metric.Float64Histogram
	UpstreamRequestsTotal metric.Int64Counter
	UpstreamErrorsTotal   metric.Int64Counter
	PollTicksTotal        metric.Int64Counter
	PollOutcomesTotal     metric.Int64Counter
	SessionsActiveGauge   metric.Int64Gauge
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("workshelf-web")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.UpstreamRequestsTotal, err = meter.Int64Counter(
			"upstream_requests_total",
			metric.WithDescription("Total number of requests issued to the platform backend"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_requests_total: %v", err)
		}

		m.UpstreamErrorsTotal, err = meter.Int64Counter(
			"upstream_errors_total",
			metric.WithDescription("Total number of failed upstream requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_errors_total: %v", err)
		}

		m.PollTicksTotal, err = meter.Int64Counter(
			"job_poll_ticks_total",
			metric.WithDescription("Total number of job status poll ticks issued"),
			metric.WithUnit("{tick}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create job_poll_ticks_total: %v", err)
		}

		m.PollOutcomesTotal, err = meter.Int64Counter(
			"job_poll_outcomes_total",
			metric.WithDescription("Terminal outcomes of job polling loops"),
			metric.WithUnit("{job}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create job_poll_outcomes_total: %v", err)
		}

		m.SessionsActiveGauge, err = meter.Int64Gauge(
			"sessions_active_current",
			metric.WithDescription("Current number of live server-side sessions"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sessions_active_current: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance; nil until InitAppMetrics runs.
func Get() *AppMetrics {
	return appMetrics
}
