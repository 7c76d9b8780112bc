package exchange

import (
	"context"

	"CoinSentinel/internal/model"
)

// MarketData fetches price history and quotes for a market.
type MarketData interface {
	FetchCandles(ctx context.Context, market, interval string, count int) ([]model.OHLCV, error)
	FetchCurrentPrice(ctx context.Context, market string) (float64, error)
	Name() string
}

// Balance is one currency position on the account.
type Balance struct {
	Currency    string
	Balance     float64
	Locked      float64
	AvgBuyPrice float64
}

// Broker submits orders and reports account balances.
type Broker interface {
	// PlaceLimitOrder submits a limit order and returns the exchange
	// order id on success.
	PlaceLimitOrder(ctx context.Context, market string, side model.Action, price, volume float64) (string, error)
	Balances(ctx context.Context) ([]Balance, error)
}
