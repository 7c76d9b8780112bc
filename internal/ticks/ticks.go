package ticks

import "github.com/shopspring/decimal"

// tier maps a minimum price to the tick size of its band.
type tier struct {
	MinPrice float64
	Step     float64
}

// KRW market tick table, highest band first.
var tiers = []tier{
	{2_000_000, 1000},
	{1_000_000, 500},
	{500_000, 100},
	{100_000, 50},
	{10_000, 10},
	{1_000, 5},
	{0, 1},
}

// Step returns the price increment for the band containing price.
func Step(price float64) float64 {
	for _, t := range tiers {
		if price >= t.MinPrice {
			return t.Step
		}
	}
	return 1
}

// Normalize maps a raw price to the nearest valid tick for its band.
// Halfway points round up (decimal rounds half away from zero; prices
// are positive). A positive price below half an increment clamps up to
// one increment rather than normalizing to zero.
func Normalize(raw float64) float64 {
	step := Step(raw)
	d := decimal.NewFromFloat(raw)
	s := decimal.NewFromFloat(step)
	v, _ := d.Div(s).Round(0).Mul(s).Float64()
	if v == 0 && raw > 0 {
		return step
	}
	return v
}
