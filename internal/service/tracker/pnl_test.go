package tracker

import (
	"testing"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/KNICEX/position-tracker/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestPosition(base string, side exchange.PositionSide, entry, mark, qty string, leverage int64) exchange.Position {
	return exchange.Position{
		TradingPair:  exchange.TradingPair{Base: base, Quote: "USDT"},
		PositionSide: side,
		EntryPrice:   decimalx.MustFromString(entry),
		MarkPrice:    decimalx.MustFromString(mark),
		Quantity:     decimalx.MustFromString(qty),
		Leverage:     decimal.NewFromInt(leverage),
	}
}

func TestPnlPercent_Long(t *testing.T) {
	pos := newTestPosition("BTC", exchange.PositionSideLong, "100", "110", "1", 5)
	pnl := PnlPercent(pos, decimalx.MustFromString("110"))
	// (110-100)/100 * 100 * 5 = 50
	assert.True(t, pnl.Equal(decimal.NewFromInt(50)), "got %s", pnl)
}

func TestPnlPercent_Short(t *testing.T) {
	pos := newTestPosition("ETH", exchange.PositionSideShort, "100", "90", "-1", 2)
	pnl := PnlPercent(pos, decimalx.MustFromString("90"))
	// (100-90)/100 * 100 * 2 = 20
	assert.True(t, pnl.Equal(decimal.NewFromInt(20)), "got %s", pnl)

	// 空头价格上涨为亏损
	pnl = PnlPercent(pos, decimalx.MustFromString("105"))
	assert.True(t, pnl.Equal(decimal.NewFromInt(-10)), "got %s", pnl)
}

func TestPnlPercent_UnknownPrice(t *testing.T) {
	// 开仓价为 0 或参考价为 0 都视为未知, 返回 0 而不是报错
	pos := newTestPosition("BTC", exchange.PositionSideLong, "0", "110", "1", 5)
	assert.True(t, PnlPercent(pos, decimalx.MustFromString("110")).IsZero())

	pos = newTestPosition("BTC", exchange.PositionSideLong, "100", "110", "1", 5)
	assert.True(t, PnlPercent(pos, decimal.Zero).IsZero())
}

func TestPnlPercent_ZeroLeverageDefaultsToOne(t *testing.T) {
	pos := newTestPosition("BTC", exchange.PositionSideLong, "100", "110", "1", 0)
	pnl := PnlPercent(pos, decimalx.MustFromString("110"))
	assert.True(t, pnl.Equal(decimal.NewFromInt(10)), "got %s", pnl)
}
