package model

// TradeRecord is one row of the append-only trade log. A record exists if
// and only if the corresponding order submission succeeded.
type TradeRecord struct {
	Action Action
	Market string
	Volume float64
	Price  float64
	Reason string
}
