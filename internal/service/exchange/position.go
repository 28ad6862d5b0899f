package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

// https://developers.binance.com/docs/zh-CN/derivatives/usds-margined-futures/trade/rest-api/Position-Information-V3

// Position 一笔未平仓的合约持仓
type Position struct {
	TradingPair  TradingPair
	PositionSide PositionSide
	EntryPrice   decimal.Decimal
	MarkPrice    decimal.Decimal
	// Quantity 持仓数量, 空头为负数
	Quantity  decimal.Decimal
	Leverage  decimal.Decimal
	UpdatedAt time.Time
}

// Equal 判断仓位实质是否变化, 标记价格每个周期都在变, 不参与比较
func (p Position) Equal(other Position) bool {
	return p.TradingPair == other.TradingPair &&
		p.PositionSide == other.PositionSide &&
		p.Quantity.Equal(other.Quantity) &&
		p.EntryPrice.Equal(other.EntryPrice) &&
		p.Leverage.Equal(other.Leverage)
}
