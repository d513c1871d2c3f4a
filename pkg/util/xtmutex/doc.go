// Package xtmutex 提供带超时的进程内互斥锁。
//
// 获取锁时不会无限阻塞：在超时时间内反复尝试非阻塞获取，
// 超时后返回失败（或在 Auto 变体中 panic），适用于把死锁/卡死
// 暴露为可观测的失败，而不是让调用方永久挂起。
//
// # 三种获取契约
//
//	类型                   Lock 签名                       超时行为
//	───────────────────────────────────────────────────────────────────
//	BlockingMutex          Lock() (*Guard[T], bool)         返回 false
//	SuspendingMutex        Lock(ctx) (*Guard[T], bool)      返回 false
//	SuspendingMutexAuto    Lock(ctx) *Guard[T]              panic(*TimeoutError)
//
// 所有类型都提供 TryLock：单次非阻塞尝试，不考虑超时。
// 竞争失败与超时失败在返回值上不可区分，都表示"未获取到锁"。
//
// # 轮询策略
//
// Lock 记录起始时间后循环：尝试获取 → 成功返回 → 已耗时严格大于超时则失败 → 立即重试。
// 即使 timeout 为 0，也至少尝试一次。默认不退避、不让出调度器（忙轮询），
// CPU 开销与竞争时长成正比，上限为 timeout。需要让出 CPU 时显式使用
// [WithYield] 或 [WithPollInterval]。
//
// 本层不提供公平性或 FIFO 保证，等待者之间的顺序完全取决于底层原语的 TryLock。
//
// # 挂起点
//
// Suspending 系列的 Lock 接受 context：入口处让出一次调度器并检查 ctx，
// 这是唯一的挂起点。进入轮询后不再检查 ctx，轮询会一直运行到成功或超时。
//
// # 默认超时
//
// 未显式指定超时的构造函数在构造时读取进程级默认值（单位秒，初始为 5），
// Blocking 与 Suspending 各自独立维护。构造后实例的超时固定不变，
// 之后修改默认值不影响已有实例。默认值可由 [SetDefaultBlockingTimeout]、
// [SetDefaultSuspendingTimeout] 或 xtmconf 配置热更新修改。
//
// # Guard
//
// Guard 表示一次成功的获取。Go 没有析构函数，需显式调用 Unlock（通常配合 defer）。
// Unlock 幂等：首次返回 nil，后续返回 [ErrNotHeld]。
package xtmutex
