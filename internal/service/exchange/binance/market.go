package binance

import (
	"context"
	"fmt"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

var _ exchange.MarketService = (*MarketService)(nil)

type MarketService struct {
	cli *futures.Client
}

// NewMarketService 创建市场数据服务
func NewMarketService(cli *futures.Client) *MarketService {
	return &MarketService{cli: cli}
}

func (m *MarketService) Ticker(ctx context.Context, tradingPair exchange.TradingPair) (decimal.Decimal, error) {
	// 币安合约API使用 BTCUSDT 格式，不是 BTC/USDT
	prices, err := m.cli.NewListPricesService().Symbol(tradingPair.ToString()).Do(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("no price returned for %s", tradingPair.ToString())
	}
	return decimal.NewFromString(prices[0].Price)
}
