package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Expected collect to succeed, got %v", err)
	}

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestTrackServiceCall(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("Expected metrics to be created, got %v", err)
	}

	ctx := context.Background()
	if err := m.TrackServiceCall(ctx, "enhance", func(context.Context) (int, error) { return 200, nil }); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	boom := errors.New("boom")
	if err := m.TrackServiceCall(ctx, "enhance", func(context.Context) (int, error) { return 500, boom }); err != boom {
		t.Errorf("Expected the call error to be returned, got %v", err)
	}

	m.RecordRejection(ctx, "NO_FILE_SELECTED")
	m.RecordExport(ctx, "pdf", true)
	m.RecordEnhancement(ctx, "upload", true)
	m.RecordRateLimitHit(ctx, "server")

	sums := collect(t, reader)
	expected := map[string]int64{
		"resumebuilder_service_calls_total":        2,
		"resumebuilder_service_errors_total":       1,
		"resumebuilder_rejected_submissions_total": 1,
		"resumebuilder_exports_total":              1,
		"resumebuilder_enhancements_total":         1,
		"resumebuilder_rate_limit_hits_total":      1,
	}
	for name, want := range expected {
		if sums[name] != want {
			t.Errorf("Expected %s = %d, got %d", name, want, sums[name])
		}
	}
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{ServiceName: "test"})
	if err != nil {
		t.Fatalf("Expected disabled manager, got %v", err)
	}

	if om.GetMetrics() == nil {
		t.Fatal("Expected metrics even when disabled")
	}
	om.GetMetrics().RecordExport(context.Background(), "docx", false)

	base := http.DefaultTransport
	if om.Transport(base) != base {
		t.Error("Expected transport to pass through when disabled")
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	om.HTTPMiddleware()(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, rec.Code)
	}

	if err := om.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}

func TestEnabledManagerServesPrometheus(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName: "resumebuilder-test",
		Enabled:     true,
		SampleRate:  1,
		Prometheus:  PrometheusConfig{Enabled: true},
	})
	if err != nil {
		t.Fatalf("Expected manager, got %v", err)
	}
	defer func() {
		if err := om.Shutdown(context.Background()); err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	}()

	om.GetMetrics().RecordExport(context.Background(), "pdf", true)

	handler := om.MetricsHandler()
	if handler == nil {
		t.Fatal("Expected a metrics handler when Prometheus is enabled")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "resumebuilder_exports_total") {
		t.Errorf("Expected exports counter in exposition, got %s", rec.Body.String())
	}

	_, span := om.Tracer("test").Start(context.Background(), "check")
	if !span.SpanContext().IsValid() {
		t.Error("Expected a recording tracer when enabled")
	}
	span.End()
}
