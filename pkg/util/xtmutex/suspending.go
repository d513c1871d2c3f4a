package xtmutex

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
)

// suspendingCore 是 SuspendingMutex 与 SuspendingMutexAuto 的共享实现。
// 底层原语是容量为 1 的 semaphore.Weighted，只使用其 TryAcquire。
type suspendingCore[T any] struct {
	sem     *semaphore.Weighted
	value   T
	timeout time.Duration
	opts    options
	tel     *telemetry
}

func newSuspendingCore[T any](value T, timeout time.Duration, flavor Flavor, opts []Option) suspendingCore[T] {
	o := applyOptions(opts)
	return suspendingCore[T]{
		sem:     semaphore.NewWeighted(1),
		value:   value,
		timeout: timeout,
		opts:    o,
		tel:     newTelemetry(&o, flavor),
	}
}

// acquire 执行一次带挂起点的获取。
// 返回 cause 非 nil 表示入口处 ctx 已结束，轮询未执行。
func (c *suspendingCore[T]) acquire(ctx context.Context) (ok bool, cause error) {
	if ctx == nil {
		panic("xtmutex: nil Context")
	}

	// 挂起点：让其他 goroutine 先运行，之后不再让出直到轮询结束。
	runtime.Gosched()
	if err := ctx.Err(); err != nil {
		c.tel.record(ctx, opLock, resultCanceled, 0)
		return false, err
	}

	ctx, span := c.tel.startSpan(ctx, c.timeout)
	defer span.End()

	ok, waited := poll(c.tryAcquire, c.timeout, &c.opts)
	c.tel.record(ctx, opLock, lockResult(ok), waited)
	span.SetAttributes(
		attribute.Bool("acquired", ok),
		attribute.Int64("waited_us", waited.Microseconds()),
	)
	if !ok {
		span.SetStatus(codes.Error, "lock timed out")
	}
	return ok, nil
}

func (c *suspendingCore[T]) tryAcquire() bool {
	return c.sem.TryAcquire(1)
}

func (c *suspendingCore[T]) guard() *Guard[T] {
	return newGuard(&c.value, func() { c.sem.Release(1) })
}

func (c *suspendingCore[T]) tryLock() (*Guard[T], bool) {
	ok := c.tryAcquire()
	c.tel.record(context.Background(), opTryLock, tryLockResult(ok), 0)
	if !ok {
		return nil, false
	}
	return c.guard(), true
}

// SuspendingMutex 是可感知 context 的带超时互斥锁。
//
// Lock 的入口是挂起点：先让出调度器并检查 ctx，然后进入与 [BlockingMutex]
// 相同的轮询。轮询期间不再检查 ctx，也不让出（除非配置了 [WithYield]）。
type SuspendingMutex[T any] struct {
	c suspendingCore[T]
}

// NewSuspending 使用当前 Suspending 默认超时（[DefaultSuspendingTimeout]）创建锁。
func NewSuspending[T any](value T, opts ...Option) *SuspendingMutex[T] {
	return NewSuspendingWithTimeout(value, DefaultSuspendingTimeout(), opts...)
}

// NewSuspendingWithTimeout 使用显式超时创建锁。
func NewSuspendingWithTimeout[T any](value T, timeout time.Duration, opts ...Option) *SuspendingMutex[T] {
	return &SuspendingMutex[T]{c: newSuspendingCore(value, timeout, FlavorSuspending, opts)}
}

// Lock 在超时时间内轮询获取锁。
// 成功返回 (guard, true)；超时或入口处 ctx 已结束返回 (nil, false)。
// ctx 不得为 nil，否则 panic。
func (m *SuspendingMutex[T]) Lock(ctx context.Context) (*Guard[T], bool) {
	if ok, _ := m.c.acquire(ctx); !ok {
		return nil, false
	}
	return m.c.guard(), true
}

// TryLock 单次非阻塞尝试，不挂起、不考虑超时。
func (m *SuspendingMutex[T]) TryLock() (*Guard[T], bool) {
	return m.c.tryLock()
}

// Timeout 返回构造时确定的超时。
func (m *SuspendingMutex[T]) Timeout() time.Duration {
	return m.c.timeout
}
