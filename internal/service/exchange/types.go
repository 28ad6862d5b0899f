package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TradingPair 交易对
type TradingPair struct {
	Base  string
	Quote string
}

// SplitSymbol 拆分交易所返回的符号字符串, 例如 BTCUSDT -> (BTC, USDT)
func SplitSymbol(s string) (string, string) {
	s = strings.ToUpper(s)
	// 常见 Quote 列表
	quotes := []string{"USDT", "BUSD", "USDC", "BTC", "ETH"}
	for _, q := range quotes {
		if strings.HasSuffix(s, q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	// fallback
	return s, ""
}

func (s TradingPair) IsZero() bool {
	return s.Base == "" || s.Quote == ""
}

func (s TradingPair) ToString() string {
	return fmt.Sprintf("%s%s", s.Base, s.Quote)
}

func (s TradingPair) ToSlashString() string {
	return fmt.Sprintf("%s/%s", s.Base, s.Quote)
}

type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

// MarketService 只读行情服务
type MarketService interface {
	Ticker(ctx context.Context, tradingPair TradingPair) (decimal.Decimal, error)
}

// PositionService 只读持仓服务
type PositionService interface {
	// GetActivePositions 获取当前活跃持仓, 数量为 0 的仓位已被过滤
	GetActivePositions(ctx context.Context, pairs []TradingPair) ([]Position, error)
}
