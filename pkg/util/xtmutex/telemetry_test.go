package xtmutex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

func newTestTracerProvider() (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), exporter
}

// counterValues 按 "operation/result" 汇总 xtmutex.acquire.total。
func counterValues(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != metricAcquireTotal {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value("operation")
				res, _ := dp.Attributes.Value("result")
				out[op.AsString()+"/"+res.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestTelemetryBlockingCounters(t *testing.T) {
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m := NewBlockingWithTimeout(0, time.Millisecond, WithMeterProvider(mp), WithName("t"))

	g, ok := m.Lock()
	require.True(t, ok)
	_, ok = m.TryLock()
	require.False(t, ok)
	_, ok = m.Lock()
	require.False(t, ok)
	require.NoError(t, g.Unlock())

	got := counterValues(t, reader)
	assert.Equal(t, map[string]int64{
		"lock/acquired":      1,
		"lock/timeout":       1,
		"try_lock/contended": 1,
	}, got)
}

func TestTelemetrySuspendingSpan(t *testing.T) {
	tp, exporter := newTestTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	mp, reader := newTestMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m := NewSuspendingWithTimeout(0, time.Millisecond,
		WithTracerProvider(tp), WithMeterProvider(mp), WithName("s"))

	g, ok := m.Lock(context.Background())
	require.True(t, ok)
	_, ok = m.Lock(context.Background())
	require.False(t, ok)
	require.NoError(t, g.Unlock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = m.Lock(ctx)
	require.False(t, ok)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2, "入口处取消不创建 span")
	assert.Equal(t, spanLock, spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.Bool("acquired", true))
	assert.Contains(t, spans[1].Attributes, attribute.Bool("acquired", false))
	assert.Contains(t, spans[1].Attributes, attribute.String("flavor", "suspending"))

	got := counterValues(t, reader)
	assert.Equal(t, int64(1), got["lock/acquired"])
	assert.Equal(t, int64(1), got["lock/timeout"])
	assert.Equal(t, int64(1), got["lock/canceled"])
}

func TestFlavorString(t *testing.T) {
	assert.Equal(t, "blocking", FlavorBlocking.String())
	assert.Equal(t, "suspending", FlavorSuspending.String())
	assert.Equal(t, "suspending_auto", FlavorSuspendingAuto.String())
	assert.Equal(t, "Flavor(9)", Flavor(9).String())
}
