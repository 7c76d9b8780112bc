package trader

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"CoinSentinel/internal/exchange"
	"CoinSentinel/internal/model"
)

type failingAdvisor struct{}

func (f *failingAdvisor) Name() string { return "down" }
func (f *failingAdvisor) Advise(_ context.Context, _ string) (string, error) {
	return "", errors.New("service unavailable")
}

type cannedAdvisor struct{ text string }

func (c *cannedAdvisor) Name() string { return "canned" }
func (c *cannedAdvisor) Advise(_ context.Context, _ string) (string, error) {
	return c.text, nil
}

type memoryRecorder struct {
	records []model.TradeRecord
	err     error
}

func (m *memoryRecorder) RecordTrade(rec *model.TradeRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *rec)
	return nil
}
func (m *memoryRecorder) Close() error { return nil }

func linearBars(from float64, n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := from + float64(i)
		bars[i] = model.OHLCV{
			Time:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}
	return bars
}

func newTestTrader(ex *exchange.MockExchange, adv interface {
	Advise(context.Context, string) (string, error)
	Name() string
}, rec *memoryRecorder) *Trader {
	return New(ex, ex, adv, rec, zap.NewNop().Sugar(), "KRW-BTC", "day", 30, 0.0001)
}

func TestRunCycle_BuySignalWithAdviceDown(t *testing.T) {
	// 20 closes rising 100..119: ma5=117 > ma20=109.5 → BUY. Advice is
	// down, so the mechanical signal decides alone.
	ex := &exchange.MockExchange{Price: 120, Candles: linearBars(100, 20)}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &failingAdvisor{}, rec)

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(ex.Orders))
	}
	order := ex.Orders[0]
	if order.Side != model.ActionBuy {
		t.Errorf("expected BUY order, got %s", order.Side)
	}
	// 120 * 0.99 = 118.8, normalized to 119 (tick size 1 below 1,000).
	if order.Price != 119 {
		t.Errorf("expected limit price 119, got %v", order.Price)
	}
	if order.Volume != 0.0001 {
		t.Errorf("expected volume 0.0001, got %v", order.Volume)
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected 1 trade record, got %d", len(rec.records))
	}
	r := rec.records[0]
	if r.Action != model.ActionBuy || r.Market != "KRW-BTC" || r.Price != 119 {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.Reason != "signal=BUY advice=absent" {
		t.Errorf("unexpected reason: %q", r.Reason)
	}
}

func TestRunCycle_FetchFailureAborts(t *testing.T) {
	ex := &exchange.MockExchange{CandleErr: errors.New("upstream down")}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &cannedAdvisor{text: "buy"}, rec)

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 0 {
		t.Errorf("expected no orders on fetch failure, got %d", len(ex.Orders))
	}
	if len(rec.records) != 0 {
		t.Errorf("expected no records on fetch failure, got %d", len(rec.records))
	}
}

func TestRunCycle_PriceFailureAborts(t *testing.T) {
	ex := &exchange.MockExchange{Candles: linearBars(100, 20), PriceErr: errors.New("no quote")}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &cannedAdvisor{text: "buy"}, rec)

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 0 || len(rec.records) != 0 {
		t.Error("expected no side effects when the quote is unavailable")
	}
}

func TestRunCycle_OrderFailureWritesNoRecord(t *testing.T) {
	ex := &exchange.MockExchange{
		Price:    120,
		Candles:  linearBars(100, 20),
		OrderErr: errors.New("insufficient funds"),
	}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &cannedAdvisor{text: "definitely buy"}, rec)

	tr.RunCycle(context.Background())

	if len(rec.records) != 0 {
		t.Errorf("expected no trade record on order failure, got %d", len(rec.records))
	}
}

func TestRunCycle_AdviceOverridesSignal(t *testing.T) {
	// Falling series → SELL signal, but advice says buy: BUY wins.
	bars := linearBars(0, 25)
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	ex := &exchange.MockExchange{Price: 100_000, Candles: bars}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &cannedAdvisor{text: "I recommend you buy here."}, rec)

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(ex.Orders))
	}
	if ex.Orders[0].Side != model.ActionBuy {
		t.Errorf("expected advice BUY to override SELL signal, got %s", ex.Orders[0].Side)
	}
	// 100,000 * 0.99 = 99,000, band ≥10,000 → tick 10.
	if ex.Orders[0].Price != 99_000 {
		t.Errorf("expected limit 99000, got %v", ex.Orders[0].Price)
	}
}

func TestRunCycle_SellPathRecordsVerbatimAdvice(t *testing.T) {
	bars := linearBars(0, 25)
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	ex := &exchange.MockExchange{Price: 2_000_000, Candles: bars}
	rec := &memoryRecorder{}
	advice := "Momentum is fading, sell into strength."
	tr := newTestTrader(ex, &cannedAdvisor{text: advice}, rec)

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(ex.Orders))
	}
	// 2,000,000 * 1.01 = 2,020,000, band ≥2,000,000 → tick 1000.
	if ex.Orders[0].Side != model.ActionSell || ex.Orders[0].Price != 2_020_000 {
		t.Errorf("unexpected order: %+v", ex.Orders[0])
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(rec.records))
	}
	if rec.records[0].Reason != "signal=SELL advice="+advice {
		t.Errorf("reason must embed advice verbatim, got %q", rec.records[0].Reason)
	}
}

type vetoClassifier struct{}

func (vetoClassifier) HasBuyIntent(_ string) bool  { return false }
func (vetoClassifier) HasSellIntent(_ string) bool { return true }

func TestSetClassifier_SwapsIntentExtraction(t *testing.T) {
	// The canned advice says buy, but the swapped classifier only ever
	// reports sell intent; with a SELL signal the cycle must sell.
	bars := linearBars(0, 25)
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	ex := &exchange.MockExchange{Price: 50_000, Candles: bars}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &cannedAdvisor{text: "buy buy buy"}, rec)
	tr.SetClassifier(vetoClassifier{})

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 1 || ex.Orders[0].Side != model.ActionSell {
		t.Fatalf("expected a SELL order under the veto classifier, got %+v", ex.Orders)
	}
}

type holdReconciler struct{}

func (holdReconciler) Reconcile(_ model.Signal, _ string, _ bool) model.Action {
	return model.ActionHold
}

func TestRunCycle_HoldTakesNoAction(t *testing.T) {
	// The keyword reconciler can never yield HOLD (the signal is always
	// BUY or SELL), so drive the early return directly.
	ex := &exchange.MockExchange{Price: 120, Candles: linearBars(100, 20)}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &cannedAdvisor{text: "wait and see"}, rec)
	tr.reconciler = holdReconciler{}

	tr.RunCycle(context.Background())

	if len(ex.Orders) != 0 {
		t.Errorf("expected no orders on HOLD, got %d", len(ex.Orders))
	}
	if len(rec.records) != 0 {
		t.Errorf("expected no records on HOLD, got %d", len(rec.records))
	}
}

func TestExecuteTrade_HoldIsRejected(t *testing.T) {
	ex := &exchange.MockExchange{Price: 120}
	rec := &memoryRecorder{}
	tr := newTestTrader(ex, &failingAdvisor{}, rec)

	if _, err := tr.executeTrade(context.Background(), model.ActionHold, 120, "n/a"); err == nil {
		t.Error("expected error when executing a HOLD action")
	}
	if len(ex.Orders) != 0 || len(rec.records) != 0 {
		t.Error("HOLD must produce no order and no record")
	}
}

func TestRunCycle_PersistenceFailureKeepsOrder(t *testing.T) {
	ex := &exchange.MockExchange{Price: 120, Candles: linearBars(100, 20)}
	rec := &memoryRecorder{err: errors.New("disk full")}
	tr := newTestTrader(ex, &failingAdvisor{}, rec)

	tr.RunCycle(context.Background())

	// The order went out; a persistence failure must not re-submit it.
	if len(ex.Orders) != 1 {
		t.Errorf("expected exactly 1 order despite persistence failure, got %d", len(ex.Orders))
	}
}
