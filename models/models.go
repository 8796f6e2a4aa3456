package models

import "time"

// Snapshot is one observation of a trading pair at a point in time.
// PairAddress uniquely identifies the storage slot: re-ingesting the same
// pair replaces the stored row, it never appends.
type Snapshot struct {
	PairAddress    string    `json:"pair_address" db:"pair_address"`
	BaseToken      string    `json:"base_token" db:"base_token"`
	QuoteToken     string    `json:"quote_token" db:"quote_token"`
	Price          float64   `json:"price" db:"price"`
	Volume24h      float64   `json:"volume_24h" db:"volume_24h"`
	LiquidityUSD   float64   `json:"liquidity_usd" db:"liquidity_usd"`
	MarketCap      float64   `json:"market_cap" db:"market_cap"`
	PriceChange24h float64   `json:"price_change_24h_pct" db:"price_change_24h"`
	DevAddress     string    `json:"dev_address" db:"dev_address"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Decision is the outcome of running a snapshot through the admission
// filter chain. A rejected snapshot always carries a reason string.
type Decision struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Accept returns a positive decision.
func Accept() Decision {
	return Decision{Accepted: true}
}

// Reject returns a negative decision with the given reason.
func Reject(reason string) Decision {
	return Decision{Accepted: false, Reason: reason}
}

// AnomalyRecord is a stored snapshot flagged by the scorer as statistically
// extreme relative to the current population. Anomaly status is transient:
// it is recomputed on every scoring pass and never persisted.
type AnomalyRecord struct {
	Snapshot     Snapshot `json:"snapshot"`
	AnomalyScore float64  `json:"anomaly_score"`
}

// TradeAction is the direction of an automated trade request.
type TradeAction string

const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)
