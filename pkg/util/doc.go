// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xtmutex: 带超时的进程内互斥锁，Blocking / Suspending / Auto(panic) 三种获取契约
//
// 设计原则：
//   - 获取失败通过返回值表达，只有 Auto 变体以 panic 暴露卡死
//   - 不依赖底层原语的定时等待能力，只使用 TryLock
package util
