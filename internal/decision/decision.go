package decision

import (
	"strings"

	"CoinSentinel/internal/model"
)

// IntentClassifier extracts directional intent from free-text advice.
type IntentClassifier interface {
	HasBuyIntent(text string) bool
	HasSellIntent(text string) bool
}

// KeywordClassifier matches case-insensitive marker substrings.
type KeywordClassifier struct {
	BuyMarkers  []string
	SellMarkers []string
}

// NewKeywordClassifier returns a classifier with the default English and
// Korean marker sets.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		BuyMarkers:  []string{"buy", "매수"},
		SellMarkers: []string{"sell", "매도"},
	}
}

func (c *KeywordClassifier) HasBuyIntent(text string) bool {
	return containsAny(text, c.BuyMarkers)
}

func (c *KeywordClassifier) HasSellIntent(text string) bool {
	return containsAny(text, c.SellMarkers)
}

func containsAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Reconciler combines the mechanical signal with the advisory text.
type Reconciler struct {
	Classifier IntentClassifier
}

// NewReconciler creates a Reconciler with the given classifier.
func NewReconciler(c IntentClassifier) *Reconciler {
	return &Reconciler{Classifier: c}
}

// Reconcile resolves one action per cycle. The branch order is fixed:
// buy intent or a BUY signal wins first, then sell intent or a SELL
// signal, then HOLD. Advice containing both markers therefore yields BUY.
// With hasAdvice false the signal alone decides.
func (r *Reconciler) Reconcile(sig model.Signal, advice string, hasAdvice bool) model.Action {
	if (hasAdvice && r.Classifier.HasBuyIntent(advice)) || sig == model.SignalBuy {
		return model.ActionBuy
	}
	if (hasAdvice && r.Classifier.HasSellIntent(advice)) || sig == model.SignalSell {
		return model.ActionSell
	}
	return model.ActionHold
}
