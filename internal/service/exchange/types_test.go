package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		base   string
		quote  string
	}{
		{"BTCUSDT", "BTC", "USDT"},
		{"ethusdt", "ETH", "USDT"},
		{"SOLUSDC", "SOL", "USDC"},
		{"XXX", "XXX", ""},
	}
	for _, tt := range tests {
		base, quote := SplitSymbol(tt.symbol)
		assert.Equal(t, tt.base, base)
		assert.Equal(t, tt.quote, quote)
	}
}

func TestPosition_Equal(t *testing.T) {
	pos := Position{
		TradingPair:  TradingPair{Base: "BTC", Quote: "USDT"},
		PositionSide: PositionSideLong,
		EntryPrice:   decimal.NewFromInt(100),
		MarkPrice:    decimal.NewFromInt(110),
		Quantity:     decimal.NewFromInt(1),
		Leverage:     decimal.NewFromInt(5),
	}

	same := pos
	same.MarkPrice = decimal.NewFromInt(120)
	// 标记价格变化不算仓位实质变化
	assert.True(t, pos.Equal(same))

	resized := pos
	resized.Quantity = decimal.NewFromInt(2)
	assert.False(t, pos.Equal(resized))

	repriced := pos
	repriced.EntryPrice = decimal.NewFromInt(101)
	assert.False(t, pos.Equal(repriced))
}
