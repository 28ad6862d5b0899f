package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

var _ exchange.PositionService = (*PositionService)(nil)

type PositionService struct {
	cli *futures.Client
}

// NewPositionService 创建持仓服务
func NewPositionService(cli *futures.Client) *PositionService {
	return &PositionService{cli: cli}
}

// GetActivePositions 获取所有持仓
// notice: 币安有挂单，未成交的仓位也会返回，需要过滤掉
func (p *PositionService) GetActivePositions(ctx context.Context, pairs []exchange.TradingPair) ([]exchange.Position, error) {
	var binancePositions []*futures.PositionRisk
	var err error

	if len(pairs) == 0 {
		binancePositions, err = p.cli.NewGetPositionRiskService().Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get position risk: %w", err)
		}
	} else {
		for _, pair := range pairs {
			ps, err := p.cli.NewGetPositionRiskService().Symbol(pair.ToString()).Do(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get position risk for %s: %w", pair.ToString(), err)
			}
			binancePositions = append(binancePositions, ps...)
		}
	}

	positions := make([]exchange.Position, 0, len(binancePositions))
	for _, v := range binancePositions {
		position, err := convertPosition(v)
		if err != nil {
			return nil, err
		}
		// 过滤掉未成交的仓位
		if position.Quantity.IsZero() {
			continue
		}
		positions = append(positions, position)
	}
	return positions, nil
}

func convertPosition(v *futures.PositionRisk) (exchange.Position, error) {
	base, quote := exchange.SplitSymbol(v.Symbol)

	quantity, err := decimal.NewFromString(v.PositionAmt)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid position amount for %s: %w", v.Symbol, err)
	}
	entryPrice, err := decimal.NewFromString(v.EntryPrice)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid entry price for %s: %w", v.Symbol, err)
	}
	markPrice, err := decimal.NewFromString(v.MarkPrice)
	if err != nil {
		return exchange.Position{}, fmt.Errorf("invalid mark price for %s: %w", v.Symbol, err)
	}
	// 杠杆字段缺失或非法时按 1 处理
	leverage, err := decimal.NewFromString(v.Leverage)
	if err != nil || leverage.LessThan(decimal.NewFromInt(1)) {
		leverage = decimal.NewFromInt(1)
	}

	side := exchange.PositionSide(v.PositionSide)
	// 单向持仓模式下 PositionSide 为 BOTH, 按数量符号判断方向
	if side != exchange.PositionSideLong && side != exchange.PositionSideShort {
		if quantity.IsNegative() {
			side = exchange.PositionSideShort
		} else {
			side = exchange.PositionSideLong
		}
	}

	return exchange.Position{
		TradingPair: exchange.TradingPair{
			Base:  base,
			Quote: quote,
		},
		PositionSide: side,
		EntryPrice:   entryPrice,
		MarkPrice:    markPrice,
		Quantity:     quantity,
		Leverage:     leverage,
		UpdatedAt:    time.Now(),
	}, nil
}
