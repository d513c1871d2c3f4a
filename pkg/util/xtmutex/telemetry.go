package xtmutex

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/omeyang/xtmkit/xtmutex"

	metricAcquireTotal = "xtmutex.acquire.total"
	metricAcquireWait  = "xtmutex.acquire.wait"

	spanLock = "xtmutex.lock"
)

// Flavor 表示锁的执行上下文类型，用作指标属性。
type Flavor int

const (
	// FlavorBlocking 对应 [BlockingMutex]。
	FlavorBlocking Flavor = iota
	// FlavorSuspending 对应 [SuspendingMutex]。
	FlavorSuspending
	// FlavorSuspendingAuto 对应 [SuspendingMutexAuto]。
	FlavorSuspendingAuto
)

// String 返回 Flavor 的可读名称。
func (f Flavor) String() string {
	switch f {
	case FlavorBlocking:
		return "blocking"
	case FlavorSuspending:
		return "suspending"
	case FlavorSuspendingAuto:
		return "suspending_auto"
	default:
		return "Flavor(" + strconv.Itoa(int(f)) + ")"
	}
}

// 指标的 operation / result 属性取值。
const (
	opLock    = "lock"
	opTryLock = "try_lock"

	resultAcquired  = "acquired"
	resultTimeout   = "timeout"
	resultContended = "contended"
	resultCanceled  = "canceled"
)

type telemetry struct {
	base   []attribute.KeyValue
	total  metric.Int64Counter
	wait   metric.Float64Histogram
	tracer trace.Tracer
}

func newTelemetry(o *options, flavor Flavor) *telemetry {
	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	// 构造函数不返回错误，指标创建失败时降级为 noop 并记录告警。
	total, err := meter.Int64Counter(
		metricAcquireTotal,
		metric.WithDescription("lock acquisition calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		o.logger.Warn("xtmutex: create counter failed", slog.Any("error", err))
		total = noop.Int64Counter{}
	}

	wait, err := meter.Float64Histogram(
		metricAcquireWait,
		metric.WithDescription("time spent acquiring the lock"),
		metric.WithUnit("s"),
	)
	if err != nil {
		o.logger.Warn("xtmutex: create histogram failed", slog.Any("error", err))
		wait = noop.Float64Histogram{}
	}

	return &telemetry{
		base: []attribute.KeyValue{
			attribute.String("mutex", o.name),
			attribute.String("flavor", flavor.String()),
		},
		total:  total,
		wait:   wait,
		tracer: tp.Tracer(instrumentationName),
	}
}

// record 记录一次获取调用的结果和等待时长。
func (t *telemetry) record(ctx context.Context, op, result string, waited time.Duration) {
	attrs := make([]attribute.KeyValue, 0, len(t.base)+2)
	attrs = append(attrs, t.base...)
	attrs = append(attrs,
		attribute.String("operation", op),
		attribute.String("result", result),
	)
	set := metric.WithAttributes(attrs...)
	t.total.Add(ctx, 1, set)
	t.wait.Record(ctx, waited.Seconds(), set)
}

func (t *telemetry) startSpan(ctx context.Context, timeout time.Duration) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanLock,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.base...),
		trace.WithAttributes(attribute.Int64("timeout_ms", timeout.Milliseconds())),
	)
}

func lockResult(ok bool) string {
	if ok {
		return resultAcquired
	}
	return resultTimeout
}

func tryLockResult(ok bool) string {
	if ok {
		return resultAcquired
	}
	return resultContended
}
