// xtmctl 是 xtmutex 的命令行工具，用于复现锁竞争场景、查看进程级默认超时。
//
// 用法:
//
//	xtmctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     xtmconf 配置文件（.yaml/.yml/.json），加载后应用到默认超时
//	    --log-level  日志级别 (debug/info/warn/error，默认: info)
//	    --log-file   日志文件路径，按大小轮转；为空时输出到 stderr
//
// 命令:
//
//	contend    持有者占用锁一段时间，等待者在超时内获取
//	defaults   打印当前默认超时
//	help       显示帮助信息
//
// 退出码:
//
//	0: 成功（contend: 等待者获取到锁）
//	1: 执行失败（contend: 等待者超时）
//	2: 参数错误
//
// 示例:
//
//	xtmctl contend --hold 50ms --timeout 200ms          # 约 50ms 后获取成功
//	xtmctl contend --hold 1s --timeout 100ms -f auto    # auto 变体超时 panic（被捕获并报告）
//	xtmctl -c /etc/app/mutex.yaml defaults
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 执行命令并映射退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	err := a.command().Run(ctx, args)
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(stderr, "关闭日志失败: %v\n", cerr)
	}
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}
