package xtmutex

import "sync/atomic"

// Guard 表示一次成功的锁获取，持有期间独占受保护的值。
//
// Unlock 是幂等的：第一次调用释放锁并返回 nil，后续调用返回 [ErrNotHeld]。
// Unlock 之后不得再通过 Value 返回的指针访问受保护的值。
type Guard[T any] struct {
	value   *T
	release func()
	done    atomic.Bool
}

func newGuard[T any](value *T, release func()) *Guard[T] {
	return &Guard[T]{value: value, release: release}
}

// Value 返回受保护值的指针。
func (g *Guard[T]) Value() *T {
	return g.value
}

// Unlock 释放锁。
func (g *Guard[T]) Unlock() error {
	if !g.done.CompareAndSwap(false, true) {
		return ErrNotHeld
	}
	g.release()
	return nil
}
