package analyzer

import (
	"errors"
	"fmt"

	"CoinSentinel/internal/model"
)

// Windows for the short and long trailing moving averages.
const (
	ShortWindow = 5
	LongWindow  = 20
)

// Analysis is the result of evaluating a price series at its latest bar.
type Analysis struct {
	Signal model.Signal
	MA5    float64
	MA20   float64
}

// SMA computes the simple moving average of the trailing period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// Analyze compares the trailing 5-bar and 20-bar close averages at the
// latest bar. ma5 > ma20 yields BUY; everything else, including equality,
// yields SELL. At least 20 bars are required.
func Analyze(bars []model.OHLCV) (*Analysis, error) {
	closes := model.Closes(bars)

	ma5, err := SMA(closes, ShortWindow)
	if err != nil {
		return nil, fmt.Errorf("ma%d: %w", ShortWindow, err)
	}
	ma20, err := SMA(closes, LongWindow)
	if err != nil {
		return nil, fmt.Errorf("ma%d: %w", LongWindow, err)
	}

	sig := model.SignalSell
	if ma5 > ma20 {
		sig = model.SignalBuy
	}
	return &Analysis{Signal: sig, MA5: ma5, MA20: ma20}, nil
}
