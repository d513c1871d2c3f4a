package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xtmkit/pkg/config/xtmconf"
	"github.com/omeyang/xtmkit/pkg/util/xtmutex"
)

// exitError 表示命令已完成输出，只需设置非零退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示参数错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{err: err}
}

// 锁类型取值。
const (
	flavorBlocking   = "blocking"
	flavorSuspending = "suspending"
	flavorAuto       = "auto"
)

// app 持有命令间共享的输出和日志。
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	closeFn func() error
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.DiscardHandler),
	}
}

func (a *app) close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "xtmctl",
		Usage:     "xtmutex 带超时互斥锁命令行工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "xtmconf 配置文件（.yaml/.yml/.json）",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径（按大小轮转），为空时输出到 stderr",
			},
		},
		Before:       a.before,
		OnUsageError: onUsageError,
		Commands: []*cli.Command{
			a.contendCommand(),
			a.defaultsCommand(),
		},
		// 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// before 初始化日志并应用配置文件。
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger, closeFn, err := newLogger(cmd.String("log-level"), cmd.String("log-file"), a.stderr)
	if err != nil {
		return ctx, &usageError{err: err}
	}
	a.logger, a.closeFn = logger, closeFn

	if path := cmd.String("config"); path != "" {
		cfg, err := xtmconf.Load(path)
		if err != nil {
			return ctx, err
		}
		if err := cfg.Apply(); err != nil {
			return ctx, err
		}
		a.logger.DebugContext(ctx, "config applied",
			slog.String("path", path),
			slog.Int64("blocking_timeout", cfg.BlockingTimeout),
			slog.Int64("suspending_timeout", cfg.SuspendingTimeout),
		)
	}
	return ctx, nil
}

func (a *app) contendCommand() *cli.Command {
	return &cli.Command{
		Name:  "contend",
		Usage: "持有者占用锁 --hold 后释放，等待者在 --timeout 内获取",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "flavor",
				Aliases: []string{"f"},
				Usage:   "锁类型 (blocking/suspending/auto)",
				Value:   flavorBlocking,
			},
			&cli.DurationFlag{
				Name:  "hold",
				Usage: "持有者占用时长",
				Value: 50 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "等待者超时；未设置时使用进程级默认值",
			},
			&cli.BoolFlag{
				Name:  "yield",
				Usage: "轮询失败后让出调度器",
			},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := contendOptions{
				flavor: strings.ToLower(cmd.String("flavor")),
				hold:   cmd.Duration("hold"),
				yield:  cmd.Bool("yield"),
			}
			if cmd.IsSet("timeout") {
				timeout := cmd.Duration("timeout")
				opts.timeout = &timeout
			}
			res, err := a.contend(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, res)
			if !res.acquired {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func (a *app) defaultsCommand() *cli.Command {
	return &cli.Command{
		Name:         "defaults",
		Usage:        "打印当前进程级默认超时",
		OnUsageError: onUsageError,
		Action: func(_ context.Context, _ *cli.Command) error {
			d := xtmutex.CurrentDefaults()
			fmt.Fprintf(a.stdout, "blocking_timeout=%v suspending_timeout=%v\n", d.Blocking, d.Suspending)
			return nil
		},
	}
}

type contendOptions struct {
	flavor  string
	hold    time.Duration
	timeout *time.Duration // nil 表示使用默认值
	yield   bool
}

type contendResult struct {
	flavor   string
	timeout  time.Duration
	acquired bool
	elapsed  time.Duration
	detail   string
}

func (r contendResult) String() string {
	s := fmt.Sprintf("flavor=%s timeout=%v acquired=%t elapsed=%v",
		r.flavor, r.timeout, r.acquired, r.elapsed.Round(time.Millisecond))
	if r.detail != "" {
		s += " detail=" + r.detail
	}
	return s
}

// locker 把三种锁统一为 contend 场景所需的最小接口。
type locker interface {
	tryLock() (unlock func() error, ok bool)
	lock(ctx context.Context) (unlock func() error, ok bool, detail string)
	timeout() time.Duration
}

// contend 复现"持有者占用 hold 后释放、等待者同时开始获取"的场景。
// 返回前等待持有者 goroutine 退出。
func (a *app) contend(ctx context.Context, opts contendOptions) (contendResult, error) {
	if opts.hold < 0 {
		return contendResult{}, &usageError{err: fmt.Errorf("--hold must not be negative: %v", opts.hold)}
	}
	l, err := a.newLocker(opts)
	if err != nil {
		return contendResult{}, err
	}

	unlockHeld, ok := l.tryLock()
	if !ok {
		return contendResult{}, fmt.Errorf("holder could not acquire a fresh lock")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// ctx 结束（如收到 SIGINT）时提前释放，避免长 --hold 无法中断
		timer := time.NewTimer(opts.hold)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			a.logger.DebugContext(ctx, "holder released early", slog.Any("error", ctx.Err()))
		}
		if err := unlockHeld(); err != nil {
			a.logger.WarnContext(ctx, "holder unlock failed", slog.Any("error", err))
		}
	}()

	start := time.Now()
	unlock, acquired, detail := l.lock(ctx)
	elapsed := time.Since(start)
	wg.Wait()

	if acquired {
		if err := unlock(); err != nil {
			return contendResult{}, err
		}
	}

	res := contendResult{
		flavor:   opts.flavor,
		timeout:  l.timeout(),
		acquired: acquired,
		elapsed:  elapsed,
		detail:   detail,
	}
	a.logger.InfoContext(ctx, "contend finished",
		slog.String("flavor", res.flavor),
		slog.Duration("hold", opts.hold),
		slog.Duration("timeout", res.timeout),
		slog.Bool("acquired", res.acquired),
		slog.Duration("elapsed", res.elapsed),
	)
	return res, nil
}

func (a *app) newLocker(opts contendOptions) (locker, error) {
	mopts := []xtmutex.Option{xtmutex.WithName("xtmctl"), xtmutex.WithLogger(a.logger)}
	if opts.yield {
		mopts = append(mopts, xtmutex.WithYield())
	}

	switch opts.flavor {
	case flavorBlocking:
		if opts.timeout != nil {
			return blockingLocker{xtmutex.NewBlockingWithTimeout(struct{}{}, *opts.timeout, mopts...)}, nil
		}
		return blockingLocker{xtmutex.NewBlocking(struct{}{}, mopts...)}, nil
	case flavorSuspending:
		if opts.timeout != nil {
			return suspendingLocker{xtmutex.NewSuspendingWithTimeout(struct{}{}, *opts.timeout, mopts...)}, nil
		}
		return suspendingLocker{xtmutex.NewSuspending(struct{}{}, mopts...)}, nil
	case flavorAuto:
		if opts.timeout != nil {
			return autoLocker{xtmutex.NewSuspendingAutoWithTimeout(struct{}{}, *opts.timeout, mopts...)}, nil
		}
		return autoLocker{xtmutex.NewSuspendingAuto(struct{}{}, mopts...)}, nil
	default:
		return nil, &usageError{err: fmt.Errorf("unknown flavor %q (want %s/%s/%s)",
			opts.flavor, flavorBlocking, flavorSuspending, flavorAuto)}
	}
}

type blockingLocker struct{ m *xtmutex.BlockingMutex[struct{}] }

func (l blockingLocker) tryLock() (func() error, bool) {
	g, ok := l.m.TryLock()
	if !ok {
		return nil, false
	}
	return g.Unlock, true
}

func (l blockingLocker) lock(context.Context) (func() error, bool, string) {
	g, ok := l.m.Lock()
	if !ok {
		return nil, false, ""
	}
	return g.Unlock, true, ""
}

func (l blockingLocker) timeout() time.Duration { return l.m.Timeout() }

type suspendingLocker struct{ m *xtmutex.SuspendingMutex[struct{}] }

func (l suspendingLocker) tryLock() (func() error, bool) {
	g, ok := l.m.TryLock()
	if !ok {
		return nil, false
	}
	return g.Unlock, true
}

func (l suspendingLocker) lock(ctx context.Context) (func() error, bool, string) {
	g, ok := l.m.Lock(ctx)
	if !ok {
		return nil, false, ""
	}
	return g.Unlock, true, ""
}

func (l suspendingLocker) timeout() time.Duration { return l.m.Timeout() }

type autoLocker struct{ m *xtmutex.SuspendingMutexAuto[struct{}] }

func (l autoLocker) tryLock() (func() error, bool) {
	g, ok := l.m.TryLock()
	if !ok {
		return nil, false
	}
	return g.Unlock, true
}

// lock 捕获 Auto 变体的超时 panic，把诊断信息作为 detail 返回。
// 只捕获 *xtmutex.TimeoutError，其他 panic 继续传播。
func (l autoLocker) lock(ctx context.Context) (unlock func() error, ok bool, detail string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		te, isTimeout := r.(*xtmutex.TimeoutError)
		if !isTimeout {
			panic(r)
		}
		unlock, ok, detail = nil, false, fmt.Sprintf("%q", te.Error())
	}()
	g := l.m.Lock(ctx)
	return g.Unlock, true, ""
}

func (l autoLocker) timeout() time.Duration { return l.m.Timeout() }
