package tracker

import "github.com/shopspring/decimal"

// ExtremesTracker 记录每个交易对生命周期内的最大盈利和最大回撤
// 仅由 Differ 在单线程内更新, 无需加锁
type ExtremesTracker struct {
	extremes map[string]Extremes
}

func NewExtremesTracker() *ExtremesTracker {
	return &ExtremesTracker{
		extremes: make(map[string]Extremes),
	}
}

// Update 用最新盈亏更新极值, 首次观察时两个极值都初始化为当前盈亏
func (t *ExtremesTracker) Update(symbol string, pnlPercent decimal.Decimal) Extremes {
	ext, ok := t.extremes[symbol]
	if !ok {
		ext = Extremes{
			MaxProfit:   pnlPercent,
			MaxDrawdown: pnlPercent,
		}
		t.extremes[symbol] = ext
		return ext
	}

	if pnlPercent.GreaterThan(ext.MaxProfit) {
		ext.MaxProfit = pnlPercent
	}
	if pnlPercent.LessThan(ext.MaxDrawdown) {
		ext.MaxDrawdown = pnlPercent
	}
	t.extremes[symbol] = ext
	return ext
}

// Get 返回当前极值, 不存在时返回 false
func (t *ExtremesTracker) Get(symbol string) (Extremes, bool) {
	ext, ok := t.extremes[symbol]
	return ext, ok
}

// Remove 平仓后删除极值记录, 重复删除为无操作
func (t *ExtremesTracker) Remove(symbol string) {
	delete(t.extremes, symbol)
}
