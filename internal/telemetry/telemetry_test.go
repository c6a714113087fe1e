package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewLocalRecordsSpansAndMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	spans := tracetest.NewSpanRecorder()
	p := NewLocal("telemetry-test", WithMetricReader(reader), WithSpanProcessor(spans))

	ctx := context.Background()
	_, span := p.Tracer().Start(ctx, "unit")
	span.End()

	counter, err := p.Meter().Int64Counter("unit_total")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "unit_total", rm.ScopeMetrics[0].Metrics[0].Name)

	require.Len(t, spans.Ended(), 1)
	assert.Equal(t, "unit", spans.Ended()[0].Name())
	assert.NotNil(t, p.LoggerProvider())

	assert.NoError(t, p.Shutdown(ctx))
}

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(Config{})
	assert.Equal(t, DefaultServiceName, cfg.ServiceName)
	assert.Equal(t, ServiceVersion, cfg.ServiceVersion)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DefaultOTLPEndpoint, cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.ExportInterval)

	cfg = withDefaults(Config{ServiceName: "svc", Endpoint: "http://collector:4318", ExportInterval: time.Second})
	assert.Equal(t, "svc", cfg.ServiceName)
	assert.Equal(t, "http://collector:4318", cfg.Endpoint)
	assert.Equal(t, time.Second, cfg.ExportInterval)
}

func TestNewBuildsExportersWithoutConnecting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p, err := New(ctx, Config{ServiceName: "telemetry-test", Endpoint: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, span := p.Tracer().Start(ctx, "offline")
	span.End()

	// the collector is unreachable, so only check that shutdown returns
	_ = p.Shutdown(ctx)
}
