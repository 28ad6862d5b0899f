package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/KNICEX/position-tracker/internal/control"
	"github.com/KNICEX/position-tracker/internal/repo"
	"github.com/KNICEX/position-tracker/internal/schedule"
	"github.com/KNICEX/position-tracker/internal/service/exchange/binance"
	"github.com/KNICEX/position-tracker/internal/service/llm/gemini"
	"github.com/KNICEX/position-tracker/internal/service/monitor"
	"github.com/KNICEX/position-tracker/internal/service/notification"
	"github.com/KNICEX/position-tracker/internal/service/tracker"
	"github.com/KNICEX/position-tracker/ioc"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const restartDelay = time.Second * 2

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
}

func main() {
	initViper()

	interval := viper.GetDuration("monitor.interval")
	if interval <= 0 {
		interval = time.Second * 10
	}
	exchangeName := viper.GetString("monitor.exchange_name")
	if exchangeName == "" {
		exchangeName = "Binance Futures"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 意图通道贯穿多次重启, 命令监听只启动一次
	intents := make(chan schedule.Intent, 1)
	var currentTask atomic.Pointer[monitor.PositionMonitorTask]

	listener := control.NewListener(os.Stdin, os.Stdout, intents, func() monitor.Status {
		if task := currentTask.Load(); task != nil {
			return task.Status()
		}
		return monitor.Status{}
	})
	go listener.Listen(ctx)

	for {
		restart := runBot(ctx, intents, &currentTask, interval, exchangeName)
		if !restart {
			break
		}
		// 重启 = 完全重建, 内存中的快照/极值不跨重启保留
		slog.Info("restarting bot", "delay", restartDelay)
		time.Sleep(restartDelay)
	}
	slog.Info("bot stopped")
}

func runBot(ctx context.Context, intents chan schedule.Intent,
	currentTask *atomic.Pointer[monitor.PositionMonitorTask],
	interval time.Duration, exchangeName string) bool {

	bian := ioc.InitBinanceCli()
	positionSvc := binance.NewPositionService(bian)
	marketSvc := binance.NewMarketService(bian)

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	journal := repo.NewTradeEventRepo(db)

	notifiers, recipients := ioc.InitNotification()
	formatter := notification.NewFormatter()
	dispatcher := notification.NewDispatcher(formatter, notifiers, recipients)

	differ := tracker.NewDiffer(marketSvc)

	opts := []monitor.Option{monitor.WithJournal(journal)}
	if geminiCli := ioc.InitGeminiCli(); geminiCli != nil {
		opts = append(opts, monitor.WithCommentator(gemini.NewService(geminiCli)))
	}

	task := monitor.NewPositionMonitorTask(positionSvc, differ, dispatcher, interval, opts...)
	currentTask.Store(task)

	broadcastStartup(ctx, dispatcher, formatter, notifiers, exchangeName)

	runner := schedule.NewRunner(task, interval, intents)
	return runner.Run(ctx)
}

func broadcastStartup(ctx context.Context, dispatcher *notification.Dispatcher,
	formatter *notification.Formatter, notifiers []notification.Notifier, exchangeName string) {

	platforms := lo.Map(notifiers, func(n notification.Notifier, _ int) notification.Platform {
		return n.Platform()
	})
	info := notification.StartupInfo{
		ExchangeName: exchangeName,
		Platforms:    platforms,
		StartedAt:    time.Now(),
	}

	texts := make(map[notification.Platform]string, len(platforms))
	for _, platform := range platforms {
		texts[platform] = formatter.FormatStartup(platform, info)
	}
	dispatcher.Broadcast(ctx, texts)
}
