package entity

import (
	"time"
)

// TradeEvent 已推送的仓位事件流水, 仅用于事后排查, 不作为跟踪状态的来源
type TradeEvent struct {
	Id           int64  `gorm:"primaryKey;autoIncrement"`
	BaseSymbol   string `gorm:"index"`
	QuoteSymbol  string `gorm:"index"`
	EventType    string `gorm:"index"`
	PositionSide string
	Quantity     string
	EntryPrice   string
	RefPrice     string
	PnlPercent   string
	MaxProfit    string
	MaxDrawdown  string
	DurationSec  int64
	// StartedUnknown 开仓发生在进程离线期间
	StartedUnknown bool
	CreatedAt      time.Time `gorm:"index"`
}
