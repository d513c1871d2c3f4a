package xtmutex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restoreDefaults 在测试结束时恢复进程级默认值。
func restoreDefaults(t *testing.T) {
	t.Helper()
	saved := CurrentDefaults()
	t.Cleanup(func() {
		require.NoError(t, saved.Apply())
	})
}

// initialDefaults 在包初始化阶段、任何测试运行之前读取。
var initialDefaults = CurrentDefaults()

func TestDefaultTimeoutInitialValue(t *testing.T) {
	assert.Equal(t, int64(DefaultTimeoutSeconds), newDefaultTimeout().Load())
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, initialDefaults.Blocking)
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, initialDefaults.Suspending)
}

func TestDefaultTimeoutsIndependent(t *testing.T) {
	restoreDefaults(t)

	require.NoError(t, SetDefaultBlockingTimeout(2))
	assert.Equal(t, 2*time.Second, DefaultBlockingTimeout())
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, DefaultSuspendingTimeout())

	require.NoError(t, SetDefaultSuspendingTimeout(11))
	assert.Equal(t, 2*time.Second, DefaultBlockingTimeout())
	assert.Equal(t, 11*time.Second, DefaultSuspendingTimeout())
}

func TestSetDefaultTimeoutInvalid(t *testing.T) {
	restoreDefaults(t)

	assert.ErrorIs(t, SetDefaultBlockingTimeout(-1), ErrInvalidTimeout)
	assert.ErrorIs(t, SetDefaultSuspendingTimeout(maxTimeoutSeconds+1), ErrInvalidTimeout)
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, DefaultBlockingTimeout())

	require.NoError(t, SetDefaultBlockingTimeout(0))
	assert.Zero(t, DefaultBlockingTimeout())
}

func TestDefaultsApply(t *testing.T) {
	restoreDefaults(t)

	d := Defaults{Blocking: 3*time.Second + 900*time.Millisecond, Suspending: time.Minute}
	require.NoError(t, d.Apply())

	got := CurrentDefaults()
	assert.Equal(t, 3*time.Second, got.Blocking, "不足一秒的部分被截断")
	assert.Equal(t, time.Minute, got.Suspending)
}

func TestDefaultsApplyNegative(t *testing.T) {
	restoreDefaults(t)

	err := Defaults{Blocking: time.Second, Suspending: -time.Second}.Apply()
	assert.ErrorIs(t, err, ErrInvalidTimeout)
	// 任一无效时两者都不修改
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, DefaultBlockingTimeout())
}
