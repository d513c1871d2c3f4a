// Package config 提供配置加载相关的子包。
//
// 子包列表：
//   - xtmconf: 从 YAML/JSON 加载 xtmutex 进程级默认超时，支持 fsnotify 热更新
package config
