package xtmutex

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotHeld 表示 Guard 已释放。
	// Unlock 第二次及后续调用时返回此错误。
	ErrNotHeld = errors.New("xtmutex: lock not held")

	// ErrTimeout 表示在超时时间内未获取到锁。
	// 可失败变体通过 bool 返回值表达超时，此错误仅用于匹配 [TimeoutError]。
	ErrTimeout = errors.New("xtmutex: lock timed out")

	// ErrInvalidTimeout 表示默认超时值无效（负数或溢出）。
	ErrInvalidTimeout = errors.New("xtmutex: invalid timeout")
)

// TimeoutError 是 [SuspendingMutexAuto.Lock] 超时时的 panic 值。
// errors.Is(err, ErrTimeout) 恒为 true。
type TimeoutError struct {
	// Name 为 WithName 设置的锁名称，可能为空。
	Name string
	// Timeout 为实例配置的超时时间。
	Timeout time.Duration
	// Cause 为入口处 ctx 已结束时的 ctx.Err()，正常超时为 nil。
	Cause error
}

func (e *TimeoutError) Error() string {
	lock := "lock"
	if e.Name != "" {
		lock = fmt.Sprintf("lock %q", e.Name)
	}
	// ctx 在入口处已结束时没有轮询，不能表述为超时
	if e.Cause != nil {
		return fmt.Sprintf("xtmutex: %s canceled before polling (timeout %v): %v", lock, e.Timeout, e.Cause)
	}
	return fmt.Sprintf("xtmutex: %s timed out after %v", lock, e.Timeout)
}

// Is 使 errors.Is(err, ErrTimeout) 成立。
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
