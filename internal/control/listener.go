package control

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/KNICEX/position-tracker/internal/schedule"
	"github.com/KNICEX/position-tracker/internal/service/monitor"
)

// Listener 在独立 goroutine 里读取运维命令, 只通过 channel 向事件循环递交意图
// 绝不直接触碰快照/极值等领域状态, 也不做任何网络 IO
type Listener struct {
	input   io.Reader
	output  io.Writer
	intents chan<- schedule.Intent
	status  func() monitor.Status
}

func NewListener(input io.Reader, output io.Writer, intents chan<- schedule.Intent, status func() monitor.Status) *Listener {
	return &Listener{
		input:   input,
		output:  output,
		intents: intents,
		status:  status,
	}
}

// Listen 阻塞读取命令直到输入结束或 ctx 取消, 通常放在 goroutine 中运行
func (l *Listener) Listen(ctx context.Context) {
	fmt.Fprintln(l.output, "Bot is running. Commands: 'restart', 'stop', 'status'")

	scanner := bufio.NewScanner(l.input)
	for scanner.Scan() {
		command := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch command {
		case "":
			continue
		case "stop":
			fmt.Fprintln(l.output, "Stopping bot...")
			l.sendIntent(ctx, schedule.IntentStop)
			return
		case "restart":
			fmt.Fprintln(l.output, "Restarting bot...")
			l.sendIntent(ctx, schedule.IntentRestart)
		case "status":
			l.printStatus()
		default:
			fmt.Fprintln(l.output, "Unknown command. Available: restart, stop, status")
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("command listener read error", "error", err)
	}
}

func (l *Listener) sendIntent(ctx context.Context, intent schedule.Intent) {
	select {
	case l.intents <- intent:
	case <-ctx.Done():
	}
}

func (l *Listener) printStatus() {
	st := l.status()
	fmt.Fprintf(l.output, "Active positions: %d\n", len(st.ActiveSymbols))
	for _, symbol := range st.ActiveSymbols {
		fmt.Fprintf(l.output, "  - %s\n", symbol)
	}
	fmt.Fprintf(l.output, "Monitoring interval: %s\n", st.Interval)
	fmt.Fprintf(l.output, "Configured recipients: %d\n", st.Recipients)
	if !st.LastCycleAt.IsZero() {
		fmt.Fprintf(l.output, "Last cycle: %s\n", st.LastCycleAt.Format("15:04:05"))
	}
}
