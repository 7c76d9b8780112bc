package advisor

import (
	"context"
	"fmt"
	"strings"

	"CoinSentinel/internal/analyzer"
	"CoinSentinel/internal/model"
)

// Advisor returns free-text trading advice for a market summary. A failed
// call means "no opinion this cycle"; callers fall back to the mechanical
// signal.
type Advisor interface {
	Advise(ctx context.Context, summary string) (string, error)
	Name() string
}

// BuildSummary renders the fixed market summary embedded into the prompt:
// the 5 most recent closes, both moving averages rounded to 2 decimals,
// the mechanical signal, and the current price.
func BuildSummary(bars []model.OHLCV, a *analyzer.Analysis, currentPrice float64) string {
	closes := model.Closes(bars)
	if len(closes) > 5 {
		closes = closes[len(closes)-5:]
	}
	recent := make([]string, len(closes))
	for i, c := range closes {
		recent[i] = fmt.Sprintf("%g", c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent 5 closes: [%s]\n", strings.Join(recent, ", "))
	fmt.Fprintf(&b, "5-bar moving average: %.2f\n", a.MA5)
	fmt.Fprintf(&b, "20-bar moving average: %.2f\n", a.MA20)
	fmt.Fprintf(&b, "Trend signal: %s\n", a.Signal)
	fmt.Fprintf(&b, "Current price: %g\n", currentPrice)
	return b.String()
}

// NoopAdvisor always reports no opinion. Used when no API key is
// configured so the bot trades on the mechanical signal alone.
type NoopAdvisor struct{}

func NewNoopAdvisor() *NoopAdvisor { return &NoopAdvisor{} }

func (n *NoopAdvisor) Name() string { return "noop" }

func (n *NoopAdvisor) Advise(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("advisor disabled")
}
