package decimalx

import "github.com/shopspring/decimal"

func MustFromString(s string) decimal.Decimal {
	res, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return res
}

// SignedPercent 格式化为带符号的两位小数百分比, 如 +12.34% / -5.00%
func SignedPercent(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Sign() >= 0 {
		s = "+" + s
	}
	return s + "%"
}

// Price 格式化为四位小数的美元价格
func Price(d decimal.Decimal) string {
	return "$" + d.StringFixed(4)
}
