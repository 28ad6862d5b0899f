package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Intent 运维控制意图, 由命令监听线程通过 channel 传入
type Intent int

const (
	IntentStop Intent = iota
	IntentRestart
)

// Runner 固定间隔驱动一个 Task
// 间隔从一个周期结束算到下一个周期开始, 周期变慢只会顺延, 不会重叠
// 周期报错只记录日志并延长休眠 (>=3 倍间隔), 循环本身永不因瞬时错误退出
type Runner struct {
	task     Task
	interval time.Duration
	backoff  time.Duration
	intents  <-chan Intent
}

type RunnerOption func(r *Runner)

// WithBackoff 覆盖出错后的休眠时长
func WithBackoff(backoff time.Duration) RunnerOption {
	return func(r *Runner) {
		r.backoff = backoff
	}
}

func NewRunner(task Task, interval time.Duration, intents <-chan Intent, opts ...RunnerOption) *Runner {
	r := &Runner{
		task:     task,
		interval: interval,
		backoff:  interval * 3,
		intents:  intents,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run 阻塞运行直到收到 stop/restart 意图或 ctx 取消
// 返回 true 表示调用方应重建整个服务后再次运行 (restart)
func (r *Runner) Run(ctx context.Context) bool {
	slog.Info("runner started", "task", r.task.Name(), "interval", r.interval)

	for {
		// 意图在周期之间协作式消费, 运行中的周期不会被抢占
		if restart, stopped := r.checkIntent(ctx); stopped {
			return restart
		}

		sleep := r.interval
		if err := r.task.Run(ctx); err != nil {
			slog.Error("task cycle failed, backing off", "task", r.task.Name(), "error", err)
			sleep = r.backoff
		}

		if restart, stopped := r.sleepOrStop(ctx, sleep); stopped {
			return restart
		}
	}
}

func (r *Runner) checkIntent(ctx context.Context) (restart, stopped bool) {
	select {
	case <-ctx.Done():
		return false, true
	case intent := <-r.intents:
		return intent == IntentRestart, true
	default:
		return false, false
	}
}

func (r *Runner) sleepOrStop(ctx context.Context, d time.Duration) (restart, stopped bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, true
	case intent := <-r.intents:
		return intent == IntentRestart, true
	case <-timer.C:
		return false, false
	}
}
