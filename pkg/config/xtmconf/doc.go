// Package xtmconf 从配置文件加载 xtmutex 的进程级默认超时，并支持热更新。
//
// 配置格式（YAML 示例，单位秒）：
//
//	mutex:
//	  blocking_timeout: 5
//	  suspending_timeout: 10
//
// 缺省的键保持 [xtmutex.DefaultTimeoutSeconds]。支持 .yaml/.yml/.json，
// 也可通过 [LoadBytes] 从 K8s ConfigMap 等字节数据加载。
//
// # 热更新
//
// [Watch] 监视配置文件所在目录（编辑器保存时可能先删除再创建文件），
// 变更经防抖后重新加载并调用 [Config.Apply]，再通知回调。
// 新默认值只影响之后构造的锁，已有实例的超时不变。
//
//	w, err := xtmconf.Watch("/etc/app/mutex.yaml", func(cfg xtmconf.Config, err error) {
//	    if err != nil {
//	        slog.Warn("mutex config reload failed", "error", err)
//	    }
//	})
//	if err != nil {
//	    return err
//	}
//	w.StartAsync()
//	defer w.Stop()
package xtmconf
