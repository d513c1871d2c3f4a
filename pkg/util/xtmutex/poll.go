package xtmutex

import (
	"runtime"
	"time"
)

// poll 反复调用 try，直到成功或已耗时严格大于 timeout。
// 至少调用一次 try；返回是否成功以及等待时长。
//
// 耗时等于 timeout 时不判定超时，会再尝试一次。
func poll(try func() bool, timeout time.Duration, o *options) (bool, time.Duration) {
	start := o.now()
	for {
		if try() {
			return true, o.now().Sub(start)
		}
		elapsed := o.now().Sub(start)
		if elapsed > timeout {
			return false, elapsed
		}
		switch {
		case o.pollInterval > 0:
			time.Sleep(o.pollInterval)
		case o.yield:
			runtime.Gosched()
		}
	}
}
