package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds all custom metrics for resumebuilder
type Metrics struct {
	// Service call metrics
	ServiceCallDuration metric.Float64Histogram
	ServiceCallCount    metric.Int64Counter
	ServiceErrorCount   metric.Int64Counter

	// Session metrics
	Enhancements        metric.Int64Counter
	RejectedSubmissions metric.Int64Counter
	Exports             metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ServiceCallDuration, err = meter.Float64Histogram(
		"resumebuilder_service_call_duration_seconds",
		metric.WithDescription("Time spent waiting on the enhancement/export service"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service call duration metric: %w", err)
	}

	m.ServiceCallCount, err = meter.Int64Counter(
		"resumebuilder_service_calls_total",
		metric.WithDescription("Total number of requests sent to the service"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service call count metric: %w", err)
	}

	m.ServiceErrorCount, err = meter.Int64Counter(
		"resumebuilder_service_errors_total",
		metric.WithDescription("Total number of failed service requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service error count metric: %w", err)
	}

	m.Enhancements, err = meter.Int64Counter(
		"resumebuilder_enhancements_total",
		metric.WithDescription("Total number of enhancement results ingested"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create enhancements metric: %w", err)
	}

	m.RejectedSubmissions, err = meter.Int64Counter(
		"resumebuilder_rejected_submissions_total",
		metric.WithDescription("Submissions rejected locally before any request was made"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rejected submissions metric: %w", err)
	}

	m.Exports, err = meter.Int64Counter(
		"resumebuilder_exports_total",
		metric.WithDescription("Total number of export attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exports metric: %w", err)
	}

	m.RateLimitHits, err = meter.Int64Counter(
		"resumebuilder_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// NopMetrics returns metrics backed by a no-op meter
func NopMetrics() *Metrics {
	m, err := NewMetrics(metricnoop.NewMeterProvider().Meter("noop"))
	if err != nil {
		panic(err) // no-op instruments cannot fail
	}
	return m
}

// TrackServiceCall instruments one request to the service with a span and metrics.
// fn returns the HTTP status it observed, or 0 when no response arrived.
func (m *Metrics) TrackServiceCall(ctx context.Context, endpoint string, fn func(context.Context) (int, error)) error {
	tracer := otel.Tracer("resumebuilder.client")
	ctx, span := tracer.Start(ctx, "service."+endpoint)
	defer span.End()

	start := time.Now()
	status, err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
		attribute.Bool("success", err == nil),
	}

	m.ServiceCallDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	m.ServiceCallCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	span.SetAttributes(attrs...)

	if err != nil {
		m.ServiceErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// RecordEnhancement counts an ingested enhancement result by source (upload or manual)
func (m *Metrics) RecordEnhancement(ctx context.Context, source string, success bool) {
	m.Enhancements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", success),
	))
}

// RecordRejection counts a submission refused locally, keyed by error code
func (m *Metrics) RecordRejection(ctx context.Context, code string) {
	m.RejectedSubmissions.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordExport counts one export attempt
func (m *Metrics) RecordExport(ctx context.Context, format string, success bool) {
	m.Exports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitHit counts a request refused by a rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, scope string) {
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}
