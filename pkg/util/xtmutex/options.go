package xtmutex

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option 定义锁的可选配置。
type Option func(*options)

type options struct {
	name           string
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	yield          bool
	pollInterval   time.Duration
	now            func() time.Time // 测试注入时钟
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		now:    time.Now,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithName 设置锁名称，用于日志、指标属性和 [TimeoutError]。
// 默认为空字符串。
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger 设置日志记录器。
// 默认使用 slog.Default()。传入 nil 将被忽略。
// 只有 Auto 变体超时 panic 前会写一条 Error 日志，可失败路径不记录日志。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
// 默认使用 otel.GetMeterProvider()。传入 nil 将被忽略。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.meterProvider = provider
		}
	}
}

// WithTracerProvider 设置 TracerProvider，仅 Suspending 系列的 Lock 创建 span。
// 默认使用 otel.GetTracerProvider()。传入 nil 将被忽略。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.tracerProvider = provider
		}
	}
}

// WithYield 在每次失败的尝试后调用 runtime.Gosched()。
//
// 默认关闭：轮询是紧凑重试，延迟最低但会占满一个 P。
// 大量 goroutine 竞争同一把锁时建议开启。
func WithYield() Option {
	return func(o *options) {
		o.yield = true
	}
}

// WithPollInterval 在每次失败的尝试后休眠 d。
// d <= 0 表示不休眠（默认）。同时设置 WithYield 时以 WithPollInterval 为准。
//
// 注意：休眠会使超时失败的实际耗时最多超出 timeout 一个 d。
func WithPollInterval(d time.Duration) Option {
	if d < 0 {
		d = 0
	}
	return func(o *options) {
		o.pollInterval = d
	}
}
