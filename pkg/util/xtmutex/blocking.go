package xtmutex

import (
	"context"
	"sync"
	"time"
)

// BlockingMutex 是包装 sync.Mutex 的带超时互斥锁。
// Lock 在调用方 goroutine 上忙轮询，不让出调度器（除非配置了 [WithYield]）。
//
// 超时在构造时确定，之后不可变，因此 BlockingMutex 可被多个 goroutine 并发使用。
// BlockingMutex 不可复制。
type BlockingMutex[T any] struct {
	mu      sync.Mutex
	value   T
	timeout time.Duration
	opts    options
	tel     *telemetry
}

// NewBlocking 使用当前 Blocking 默认超时（[DefaultBlockingTimeout]）创建锁。
func NewBlocking[T any](value T, opts ...Option) *BlockingMutex[T] {
	return NewBlockingWithTimeout(value, DefaultBlockingTimeout(), opts...)
}

// NewBlockingWithTimeout 使用显式超时创建锁。
// timeout <= 0 时 Lock 只尝试一次。
func NewBlockingWithTimeout[T any](value T, timeout time.Duration, opts ...Option) *BlockingMutex[T] {
	o := applyOptions(opts)
	return &BlockingMutex[T]{
		value:   value,
		timeout: timeout,
		opts:    o,
		tel:     newTelemetry(&o, FlavorBlocking),
	}
}

// Lock 在超时时间内轮询获取锁。
// 成功返回 (guard, true)；超时返回 (nil, false)。不会 panic。
func (m *BlockingMutex[T]) Lock() (*Guard[T], bool) {
	ok, waited := poll(m.mu.TryLock, m.timeout, &m.opts)
	m.tel.record(context.Background(), opLock, lockResult(ok), waited)
	if !ok {
		return nil, false
	}
	return newGuard(&m.value, m.mu.Unlock), true
}

// TryLock 单次非阻塞尝试，不考虑超时。
// 锁被占用时立即返回 (nil, false)。
func (m *BlockingMutex[T]) TryLock() (*Guard[T], bool) {
	ok := m.mu.TryLock()
	m.tel.record(context.Background(), opTryLock, tryLockResult(ok), 0)
	if !ok {
		return nil, false
	}
	return newGuard(&m.value, m.mu.Unlock), true
}

// Do 获取锁后执行 fn 并释放锁。超时未获取时不执行 fn，返回 false。
func (m *BlockingMutex[T]) Do(fn func(*T)) bool {
	g, ok := m.Lock()
	if !ok {
		return false
	}
	defer func() { _ = g.Unlock() }()
	fn(g.Value())
	return true
}

// Timeout 返回构造时确定的超时。
func (m *BlockingMutex[T]) Timeout() time.Duration {
	return m.timeout
}
