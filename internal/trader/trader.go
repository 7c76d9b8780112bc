package trader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"CoinSentinel/internal/advisor"
	"CoinSentinel/internal/analyzer"
	"CoinSentinel/internal/decision"
	"CoinSentinel/internal/exchange"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/ticks"
)

// Limit price offsets from the current price: buy 1% below, sell 1% above.
const (
	buyPriceRatio  = 0.99
	sellPriceRatio = 1.01
)

// actionReconciler resolves one action from the signal and advice.
type actionReconciler interface {
	Reconcile(sig model.Signal, advice string, hasAdvice bool) model.Action
}

// Trader runs one full decision-and-execution cycle per trigger. All
// collaborators are injected so the cycle can run against fakes.
type Trader struct {
	market     exchange.MarketData
	broker     exchange.Broker
	advisor    advisor.Advisor
	reconciler actionReconciler
	recorder   recorder.Recorder
	log        *zap.SugaredLogger

	symbol   string
	interval string
	barCount int
	volume   float64
}

// New creates a Trader.
func New(
	market exchange.MarketData,
	broker exchange.Broker,
	adv advisor.Advisor,
	rec recorder.Recorder,
	log *zap.SugaredLogger,
	symbol, interval string,
	barCount int,
	volume float64,
) *Trader {
	return &Trader{
		market:     market,
		broker:     broker,
		advisor:    adv,
		reconciler: decision.NewReconciler(decision.NewKeywordClassifier()),
		recorder:   rec,
		log:        log,
		symbol:     symbol,
		interval:   interval,
		barCount:   barCount,
		volume:     volume,
	}
}

// SetClassifier swaps the intent classifier. The default keyword
// classifier matches buy/sell markers in English and Korean.
func (t *Trader) SetClassifier(c decision.IntentClassifier) {
	t.reconciler = decision.NewReconciler(c)
}

// RunCycle performs fetch → analyze → advise → reconcile → execute. Every
// failure is contained in this cycle: collection and order failures end
// the cycle early, an advice failure degrades to the mechanical signal.
// The next scheduled trigger is the only retry.
func (t *Trader) RunCycle(ctx context.Context) {
	// FETCH
	bars, err := t.market.FetchCandles(ctx, t.symbol, t.interval, t.barCount)
	if err != nil {
		t.log.Errorw("cycle aborted: fetch candles failed", "market", t.symbol, "error", err)
		return
	}
	currentPrice, err := t.market.FetchCurrentPrice(ctx, t.symbol)
	if err != nil {
		t.log.Errorw("cycle aborted: fetch current price failed", "market", t.symbol, "error", err)
		return
	}

	// ANALYZE
	analysis, err := analyzer.Analyze(bars)
	if err != nil {
		t.log.Errorw("cycle aborted: analysis failed", "market", t.symbol, "bars", len(bars), "error", err)
		return
	}
	t.log.Infow("analysis complete",
		"market", t.symbol, "signal", analysis.Signal,
		"ma5", analysis.MA5, "ma20", analysis.MA20, "price", currentPrice)

	// ADVISE (failure degrades to signal-only)
	summary := advisor.BuildSummary(bars, analysis, currentPrice)
	advice, err := t.advisor.Advise(ctx, summary)
	hasAdvice := err == nil
	if err != nil {
		t.log.Warnw("advice unavailable, using signal only", "advisor", t.advisor.Name(), "error", err)
	} else {
		t.log.Infow("advice received", "advisor", t.advisor.Name(), "advice", advice)
	}

	// RECONCILE
	action := t.reconciler.Reconcile(analysis.Signal, advice, hasAdvice)
	if action == model.ActionHold {
		t.log.Infow("no action this cycle", "market", t.symbol, "signal", analysis.Signal)
		return
	}

	// EXECUTE
	reason := buildReason(analysis.Signal, advice, hasAdvice)
	rec, err := t.executeTrade(ctx, action, currentPrice, reason)
	if err != nil {
		t.log.Errorw("cycle aborted: order failed", "market", t.symbol, "action", action, "error", err)
		return
	}
	t.log.Infow("trade executed",
		"market", rec.Market, "action", rec.Action,
		"price", rec.Price, "volume", rec.Volume)
}

// executeTrade computes the limit price for the action, submits the order,
// and appends a trade record on success. A failed submission returns an
// error and writes nothing. A failed append after a successful submission
// is a data-loss risk, surfaced distinctly; the order is never re-sent.
func (t *Trader) executeTrade(ctx context.Context, action model.Action, currentPrice float64, reason string) (*model.TradeRecord, error) {
	var limitPrice float64
	switch action {
	case model.ActionBuy:
		limitPrice = ticks.Normalize(currentPrice * buyPriceRatio)
	case model.ActionSell:
		limitPrice = ticks.Normalize(currentPrice * sellPriceRatio)
	default:
		return nil, fmt.Errorf("no order for action %q", action)
	}

	orderID, err := t.broker.PlaceLimitOrder(ctx, t.symbol, action, limitPrice, t.volume)
	if err != nil {
		return nil, fmt.Errorf("place limit order: %w", err)
	}
	t.log.Infow("order accepted", "market", t.symbol, "action", action, "order_id", orderID)

	rec := &model.TradeRecord{
		Action: action,
		Market: t.symbol,
		Volume: t.volume,
		Price:  limitPrice,
		Reason: reason,
	}
	if err := t.recorder.RecordTrade(rec); err != nil {
		t.log.Errorw("trade executed but not recorded: trade log is missing this order",
			"market", t.symbol, "action", action, "order_id", orderID, "error", err)
	}
	return rec, nil
}

// buildReason embeds the triggering signal and advice text verbatim.
func buildReason(sig model.Signal, advice string, hasAdvice bool) string {
	if !hasAdvice {
		return fmt.Sprintf("signal=%s advice=absent", sig)
	}
	return fmt.Sprintf("signal=%s advice=%s", sig, advice)
}
