package tracker

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/samber/lo"
)

// Differ 对比前后两次持仓快照, 产生开仓/调仓/平仓事件
// previous 快照、极值表和开仓时间表都由 Differ 独占, 只在单线程轮询中被修改
type Differ struct {
	marketSvc exchange.MarketService

	previous   Snapshot
	extremes   *ExtremesTracker
	startTimes map[string]time.Time
	primed     bool

	now func() time.Time
}

type DifferOption func(d *Differ)

// WithClock 注入时钟, 测试用
func WithClock(now func() time.Time) DifferOption {
	return func(d *Differ) {
		d.now = now
	}
}

func NewDiffer(marketSvc exchange.MarketService, opts ...DifferOption) *Differ {
	d := &Differ{
		marketSvc:  marketSvc,
		previous:   make(Snapshot),
		extremes:   NewExtremesTracker(),
		startTimes: make(map[string]time.Time),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BuildSnapshot 把原始持仓列表规整为快照, 数量为 0 的仓位不允许进入快照
func BuildSnapshot(raw []exchange.Position) Snapshot {
	snapshot := make(Snapshot, len(raw))
	for _, pos := range raw {
		if pos.Quantity.IsZero() {
			continue
		}
		snapshot[pos.TradingPair.ToString()] = pos
	}
	return snapshot
}

// Diff 用最新持仓列表对比上一次快照
// 获取持仓失败时不要调用 Diff, 跳过本周期即可, previous 保持不变
func (d *Differ) Diff(ctx context.Context, raw []exchange.Position) []PositionEvent {
	current := BuildSnapshot(raw)
	now := d.now()

	// 第一次快照只做收编: 进程启动前就存在的仓位不算新开仓,
	// 不记录开仓时间, 它们最终平仓时会带上 StartedUnknown 标记
	if !d.primed {
		d.primed = true
		for symbol, pos := range current {
			d.extremes.Update(symbol, PnlPercent(pos, pos.MarkPrice))
		}
		d.previous = current
		if len(current) > 0 {
			slog.Info("adopted pre-existing positions", "count", len(current))
		}
		return nil
	}

	var events []PositionEvent

	symbols := lo.Keys(current)
	sort.Strings(symbols)

	for _, symbol := range symbols {
		pos := current[symbol]
		pnl := PnlPercent(pos, pos.MarkPrice)
		d.extremes.Update(symbol, pnl)

		prev, existed := d.previous[symbol]
		if !existed {
			d.startTimes[symbol] = now
			events = append(events, PositionEvent{
				Type:       EventOpened,
				Position:   pos,
				RefPrice:   pos.MarkPrice,
				PnlPercent: pnl,
				Time:       now,
			})
			continue
		}

		if pos.Equal(prev) {
			continue
		}
		events = append(events, PositionEvent{
			Type:       EventResized,
			Position:   pos,
			RefPrice:   pos.MarkPrice,
			PnlPercent: pnl,
			Direction:  classifyResize(prev, pos),
			Time:       now,
		})
	}

	closedSymbols, _ := lo.Difference(lo.Keys(d.previous), lo.Keys(current))
	sort.Strings(closedSymbols)
	for _, symbol := range closedSymbols {
		events = append(events, d.closePosition(ctx, symbol, now))
	}

	d.previous = current
	return events
}

// ActiveSymbols 返回当前快照内的交易对, 仅供状态查询
func (d *Differ) ActiveSymbols() []string {
	symbols := lo.Keys(d.previous)
	sort.Strings(symbols)
	return symbols
}

func classifyResize(old, cur exchange.Position) ResizeDirection {
	oldQty := old.Quantity.Abs()
	newQty := cur.Quantity.Abs()
	switch {
	case newQty.GreaterThan(oldQty):
		return ResizeIncreased
	case newQty.LessThan(oldQty):
		return ResizeReduced
	default:
		return ResizeRepriced
	}
}

// closePosition 交易所已不再返回该仓位, 用最后一次快照记录生成平仓事件
// 优先拉取最新成交价计算最终盈亏, 失败则退回最后已知的标记价格
func (d *Differ) closePosition(ctx context.Context, symbol string, now time.Time) PositionEvent {
	lastKnown := d.previous[symbol]

	refPrice := lastKnown.MarkPrice
	if freshPrice, err := d.marketSvc.Ticker(ctx, lastKnown.TradingPair); err != nil {
		slog.Error("failed to fetch close price, falling back to last mark price",
			"symbol", symbol, "error", err)
	} else if !freshPrice.IsZero() {
		refPrice = freshPrice
	}

	finalPnl := PnlPercent(lastKnown, refPrice)
	ext, ok := d.extremes.Get(symbol)
	if !ok {
		ext = Extremes{MaxProfit: finalPnl, MaxDrawdown: finalPnl}
	}

	startTime, started := d.startTimes[symbol]
	var duration time.Duration
	if started {
		duration = now.Sub(startTime)
	}

	d.extremes.Remove(symbol)
	delete(d.startTimes, symbol)

	return PositionEvent{
		Type:           EventClosed,
		Position:       lastKnown,
		RefPrice:       refPrice,
		PnlPercent:     finalPnl,
		Duration:       duration,
		MaxProfit:      ext.MaxProfit,
		MaxDrawdown:    ext.MaxDrawdown,
		StartedUnknown: !started,
		Time:           now,
	}
}
