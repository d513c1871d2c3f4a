package xtmutex

import (
	"context"
	"log/slog"
	"time"
)

// SuspendingMutexAuto 是超时即 panic 的 [SuspendingMutex]。
//
// 用于替换无超时的互斥锁：调用方把锁当作永不失败的原语使用，
// 超时仅作为死锁/卡死检测，一旦触发即以 *[TimeoutError] panic，
// 未被 recover 时进程崩溃并输出诊断信息。
type SuspendingMutexAuto[T any] struct {
	c suspendingCore[T]
}

// NewSuspendingAuto 使用当前 Suspending 默认超时（[DefaultSuspendingTimeout]）创建锁。
func NewSuspendingAuto[T any](value T, opts ...Option) *SuspendingMutexAuto[T] {
	return NewSuspendingAutoWithTimeout(value, DefaultSuspendingTimeout(), opts...)
}

// NewSuspendingAutoWithTimeout 使用显式超时创建锁。
func NewSuspendingAutoWithTimeout[T any](value T, timeout time.Duration, opts ...Option) *SuspendingMutexAuto[T] {
	return &SuspendingMutexAuto[T]{c: newSuspendingCore(value, timeout, FlavorSuspendingAuto, opts)}
}

// Lock 在超时时间内轮询获取锁，只在成功时返回。
//
// 超时（或入口处 ctx 已结束）时先记录一条 Error 日志，
// 然后以 *[TimeoutError] panic，错误信息包含配置的超时。
// ctx 不得为 nil，否则 panic。
func (m *SuspendingMutexAuto[T]) Lock(ctx context.Context) *Guard[T] {
	ok, cause := m.c.acquire(ctx)
	if ok {
		return m.c.guard()
	}

	err := &TimeoutError{Name: m.c.opts.name, Timeout: m.c.timeout, Cause: cause}
	msg := "xtmutex: lock timed out"
	if cause != nil {
		msg = "xtmutex: lock canceled before polling"
	}
	m.c.opts.logger.LogAttrs(ctx, slog.LevelError, msg,
		slog.String("mutex", m.c.opts.name),
		slog.Duration("timeout", m.c.timeout),
		slog.Any("error", err),
	)
	panic(err)
}

// TryLock 单次非阻塞尝试，不挂起、不考虑超时、不 panic。
func (m *SuspendingMutexAuto[T]) TryLock() (*Guard[T], bool) {
	return m.c.tryLock()
}

// Timeout 返回构造时确定的超时。
func (m *SuspendingMutexAuto[T]) Timeout() time.Duration {
	return m.c.timeout
}
