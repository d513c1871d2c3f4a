package xtmutex

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// DefaultTimeoutSeconds 是进程级默认超时的初始值（秒）。
const DefaultTimeoutSeconds = 5

// maxTimeoutSeconds 保证 seconds * time.Second 不溢出 int64。
const maxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// 两种执行上下文各自独立的默认超时，单位秒。
// 读写只要求原子性，不与其他内存操作建立同步关系。
var (
	blockingDefault   = newDefaultTimeout()
	suspendingDefault = newDefaultTimeout()
)

func newDefaultTimeout() *atomic.Int64 {
	v := new(atomic.Int64)
	v.Store(DefaultTimeoutSeconds)
	return v
}

// DefaultBlockingTimeout 返回 [NewBlocking] 当前使用的默认超时。
func DefaultBlockingTimeout() time.Duration {
	return time.Duration(blockingDefault.Load()) * time.Second
}

// DefaultSuspendingTimeout 返回 [NewSuspending] / [NewSuspendingAuto] 当前使用的默认超时。
func DefaultSuspendingTimeout() time.Duration {
	return time.Duration(suspendingDefault.Load()) * time.Second
}

// SetDefaultBlockingTimeout 设置 Blocking 默认超时（秒）。
// 只影响之后构造的实例。seconds 为负数或过大时返回 [ErrInvalidTimeout]。
func SetDefaultBlockingTimeout(seconds int64) error {
	return storeDefault(blockingDefault, seconds)
}

// SetDefaultSuspendingTimeout 设置 Suspending 默认超时（秒）。
// 只影响之后构造的实例。seconds 为负数或过大时返回 [ErrInvalidTimeout]。
func SetDefaultSuspendingTimeout(seconds int64) error {
	return storeDefault(suspendingDefault, seconds)
}

func storeDefault(v *atomic.Int64, seconds int64) error {
	if seconds < 0 || seconds > maxTimeoutSeconds {
		return fmt.Errorf("%w: %d seconds", ErrInvalidTimeout, seconds)
	}
	v.Store(seconds)
	return nil
}

// Defaults 是两种默认超时的快照，供组合根显式传递。
//
// 不依赖全局状态的用法：在组合根持有 Defaults，构造时使用
// NewBlockingWithTimeout(v, d.Blocking) 等显式超时的构造函数。
type Defaults struct {
	Blocking   time.Duration
	Suspending time.Duration
}

// CurrentDefaults 读取当前进程级默认值。
func CurrentDefaults() Defaults {
	return Defaults{
		Blocking:   DefaultBlockingTimeout(),
		Suspending: DefaultSuspendingTimeout(),
	}
}

// Apply 将快照写入进程级默认值，不足一秒的部分被截断。
// 任一值无效时两者都不修改。
func (d Defaults) Apply() error {
	blocking := int64(d.Blocking / time.Second)
	suspending := int64(d.Suspending / time.Second)
	if d.Blocking < 0 || d.Suspending < 0 {
		return fmt.Errorf("%w: negative duration (blocking=%v, suspending=%v)",
			ErrInvalidTimeout, d.Blocking, d.Suspending)
	}
	return errors.Join(
		SetDefaultBlockingTimeout(blocking),
		SetDefaultSuspendingTimeout(suspending),
	)
}
