package fxrate

import (
	"math"

	"github.com/stwalsh4118/landledger/internal/money"
)

// Volatility is the coefficient of variation of the series in percent: the
// population standard deviation divided by the mean, times 100, rounded to
// 2 decimals. It is unavailable for fewer than two points or a zero mean.
func Volatility(series []Point) (float64, bool) {
	if len(series) < 2 {
		return 0, false
	}

	n := float64(len(series))
	sum := 0.0
	for _, p := range series {
		sum += p.Rate
	}
	mean := sum / n
	if mean == 0 {
		return 0, false
	}

	sq := 0.0
	for _, p := range series {
		d := p.Rate - mean
		sq += d * d
	}
	std := math.Sqrt(sq / n)
	return money.Round2(std / mean * 100), true
}
