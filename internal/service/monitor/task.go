package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/KNICEX/position-tracker/internal/entity"
	"github.com/KNICEX/position-tracker/internal/repo"
	"github.com/KNICEX/position-tracker/internal/schedule"
	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/KNICEX/position-tracker/internal/service/llm"
	"github.com/KNICEX/position-tracker/internal/service/notification"
	"github.com/KNICEX/position-tracker/internal/service/tracker"
)

// PositionMonitorTask 一次轮询周期: 拉取持仓 -> 快照对比 -> 流水落库 -> 扇出推送
type PositionMonitorTask struct {
	positionSvc exchange.PositionService
	differ      *tracker.Differ
	dispatcher  *notification.Dispatcher

	journal repo.TradeEventRepo
	llmSvc  llm.Service

	interval time.Duration
	status   atomic.Pointer[Status]
}

type Option func(t *PositionMonitorTask)

// WithJournal 启用事件流水落库
func WithJournal(journal repo.TradeEventRepo) Option {
	return func(t *PositionMonitorTask) {
		t.journal = journal
	}
}

// WithCommentator 平仓通知附加一句 AI 复盘点评
func WithCommentator(llmSvc llm.Service) Option {
	return func(t *PositionMonitorTask) {
		t.llmSvc = llmSvc
	}
}

func NewPositionMonitorTask(positionSvc exchange.PositionService, differ *tracker.Differ,
	dispatcher *notification.Dispatcher, interval time.Duration, opts ...Option) *PositionMonitorTask {
	task := &PositionMonitorTask{
		positionSvc: positionSvc,
		differ:      differ,
		dispatcher:  dispatcher,
		interval:    interval,
	}
	for _, opt := range opts {
		opt(task)
	}
	task.status.Store(&Status{
		Interval:   interval,
		Recipients: dispatcher.RecipientCount(),
	})
	return task
}

var _ schedule.Task = (*PositionMonitorTask)(nil)

func (t *PositionMonitorTask) Run(ctx context.Context) error {
	// 拉取失败时绝不调用 Diff: 空结果会被当成全部平仓, 产生假事件
	positions, err := t.positionSvc.GetActivePositions(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch positions: %w", err)
	}

	events := t.differ.Diff(ctx, positions)
	for _, event := range events {
		slog.Info("position event detected",
			"symbol", event.Position.TradingPair.ToString(),
			"type", event.Type,
			"pnl", event.PnlPercent.StringFixed(2))

		t.journalEvent(ctx, event)

		msg := notification.Message{Event: event}
		if event.Type == tracker.EventClosed && t.llmSvc != nil {
			msg.Commentary = t.commentary(ctx, event)
		}
		t.dispatcher.Dispatch(ctx, msg)
	}

	t.publishStatus()
	return nil
}

func (t *PositionMonitorTask) Name() string {
	return "position monitor task"
}

// Status 返回最近一次发布的状态快照
func (t *PositionMonitorTask) Status() Status {
	return *t.status.Load()
}

func (t *PositionMonitorTask) publishStatus() {
	t.status.Store(&Status{
		ActiveSymbols: t.differ.ActiveSymbols(),
		Interval:      t.interval,
		Recipients:    t.dispatcher.RecipientCount(),
		LastCycleAt:   time.Now(),
	})
}

func (t *PositionMonitorTask) journalEvent(ctx context.Context, event tracker.PositionEvent) {
	if t.journal == nil {
		return
	}
	_, err := t.journal.Create(ctx, entity.TradeEvent{
		BaseSymbol:     event.Position.TradingPair.Base,
		QuoteSymbol:    event.Position.TradingPair.Quote,
		EventType:      string(event.Type),
		PositionSide:   string(event.Position.PositionSide),
		Quantity:       event.Position.Quantity.String(),
		EntryPrice:     event.Position.EntryPrice.String(),
		RefPrice:       event.RefPrice.String(),
		PnlPercent:     event.PnlPercent.String(),
		MaxProfit:      event.MaxProfit.String(),
		MaxDrawdown:    event.MaxDrawdown.String(),
		DurationSec:    int64(event.Duration.Seconds()),
		StartedUnknown: event.StartedUnknown,
		CreatedAt:      event.Time,
	})
	if err != nil {
		slog.Error("failed to journal trade event",
			"symbol", event.Position.TradingPair.ToString(), "error", err)
	}
}

// commentary 生成一句平仓复盘, 失败只降级为空, 不影响通知
func (t *PositionMonitorTask) commentary(ctx context.Context, event tracker.PositionEvent) string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("一笔合约交易刚刚平仓: 交易对 %s, 方向 %s, 杠杆 %sx, 最终收益 %s%%, "+
		"期间最大盈利 %s%%, 最大回撤 %s%%, 持仓时长 %s。"+
		"请用英文给出一句不超过25个单词的简短复盘点评, 不要使用表情符号, 直接输出这句话。",
		event.Position.TradingPair.ToString(),
		event.Position.PositionSide,
		event.Position.Leverage.StringFixed(0),
		event.PnlPercent.StringFixed(2),
		event.MaxProfit.StringFixed(2),
		event.MaxDrawdown.StringFixed(2),
		notification.FormatDuration(event.Duration))

	answer, err := t.llmSvc.AskOnce(ctx, llm.Question{Content: prompt})
	if err != nil {
		slog.Warn("failed to generate close commentary",
			"symbol", event.Position.TradingPair.ToString(), "error", err)
		return ""
	}
	return strings.TrimSpace(answer.Content)
}
