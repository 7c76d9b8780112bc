package exchange

import (
	"context"
	"time"

	"CoinSentinel/internal/model"
)

// MockExchange returns controllable fixed data and records submitted
// orders. Used for development and testing.
type MockExchange struct {
	Price     float64
	Candles   []model.OHLCV
	CandleErr error
	PriceErr  error
	OrderErr  error

	Orders []MockOrder
}

// MockOrder captures one PlaceLimitOrder call.
type MockOrder struct {
	Market string
	Side   model.Action
	Price  float64
	Volume float64
}

func (m *MockExchange) Name() string { return "mock" }

func (m *MockExchange) FetchCandles(_ context.Context, _, _ string, count int) ([]model.OHLCV, error) {
	if m.CandleErr != nil {
		return nil, m.CandleErr
	}
	if m.Candles != nil {
		return m.Candles, nil
	}
	return generateMockBars(m.Price, count), nil
}

func (m *MockExchange) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

func (m *MockExchange) PlaceLimitOrder(_ context.Context, market string, side model.Action, price, volume float64) (string, error) {
	if m.OrderErr != nil {
		return "", m.OrderErr
	}
	m.Orders = append(m.Orders, MockOrder{Market: market, Side: side, Price: price, Volume: volume})
	return "mock-order", nil
}

func (m *MockExchange) Balances(_ context.Context) ([]Balance, error) {
	return []Balance{{Currency: "KRW", Balance: 1_000_000}}, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 10,
		}
	}
	return bars
}
