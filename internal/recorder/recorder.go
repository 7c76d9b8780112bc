package recorder

import "CoinSentinel/internal/model"

// Recorder persists the append-only trade log.
type Recorder interface {
	RecordTrade(rec *model.TradeRecord) error
	Close() error
}
