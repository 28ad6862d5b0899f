package tracker

import (
	"time"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/shopspring/decimal"
)

// Snapshot 一次轮询得到的全部活跃持仓, key 为交易对字符串
type Snapshot map[string]exchange.Position

type EventType string

const (
	EventOpened  EventType = "opened"
	EventResized EventType = "resized"
	EventClosed  EventType = "closed"
)

type ResizeDirection string

const (
	// ResizeIncreased 加仓
	ResizeIncreased ResizeDirection = "increased"
	// ResizeReduced 减仓
	ResizeReduced ResizeDirection = "reduced"
	// ResizeRepriced 数量未变但仓位实质变化 (如均价因撮合修正而移动)
	ResizeRepriced ResizeDirection = "repriced"
)

// PositionEvent 一次快照对比产生的离散交易事件
type PositionEvent struct {
	Type     EventType
	Position exchange.Position
	// RefPrice 计算盈亏所用的参考价格
	RefPrice   decimal.Decimal
	PnlPercent decimal.Decimal

	// Direction 仅 Resized 事件有效
	Direction ResizeDirection

	// 以下字段仅 Closed 事件有效
	Duration    time.Duration
	MaxProfit   decimal.Decimal
	MaxDrawdown decimal.Decimal
	// StartedUnknown 开仓从未被本进程观察到 (重启期间开的仓)
	StartedUnknown bool

	Time time.Time
}

// Extremes 单个交易对生命周期内观察到的最好/最差盈亏
type Extremes struct {
	MaxProfit   decimal.Decimal
	MaxDrawdown decimal.Decimal
}
