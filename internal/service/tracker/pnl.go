package tracker

import (
	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PnlPercent 计算带杠杆的收益率百分比
// 开仓价或参考价为 0 时视为未知, 返回 0, 不报错
func PnlPercent(pos exchange.Position, refPrice decimal.Decimal) decimal.Decimal {
	if pos.EntryPrice.IsZero() || refPrice.IsZero() {
		return decimal.Zero
	}

	var priceChange decimal.Decimal
	if pos.PositionSide == exchange.PositionSideShort {
		priceChange = pos.EntryPrice.Sub(refPrice)
	} else {
		priceChange = refPrice.Sub(pos.EntryPrice)
	}

	leverage := pos.Leverage
	if leverage.IsZero() {
		leverage = decimal.NewFromInt(1)
	}

	return priceChange.Div(pos.EntryPrice).Mul(oneHundred).Mul(leverage)
}
