package dexscreener

// Raw shapes returned by the DexScreener pairs endpoint. Required nested
// objects are pointers so the normalizer can tell "absent" from "zero".

// TokenInfo identifies one side of a pair.
type TokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// VolumeStats holds windowed trade volume in USD.
type VolumeStats struct {
	H24 *float64 `json:"h24"`
	H6  *float64 `json:"h6"`
	H1  *float64 `json:"h1"`
	M5  *float64 `json:"m5"`
}

// LiquidityStats holds the pool's liquidity breakdown.
type LiquidityStats struct {
	USD   *float64 `json:"usd"`
	Base  float64  `json:"base"`
	Quote float64  `json:"quote"`
}

// PriceChangeStats holds windowed price change percentages.
type PriceChangeStats struct {
	H24 *float64 `json:"h24"`
	H6  *float64 `json:"h6"`
	H1  *float64 `json:"h1"`
	M5  *float64 `json:"m5"`
}

// Pair is one raw trading-pair record.
type Pair struct {
	ChainID     string            `json:"chainId"`
	DexID       string            `json:"dexId"`
	PairAddress string            `json:"pairAddress"`
	BaseToken   *TokenInfo        `json:"baseToken"`
	QuoteToken  *TokenInfo        `json:"quoteToken"`
	PriceNative string            `json:"priceNative"`
	PriceUsd    string            `json:"priceUsd"`
	Volume      *VolumeStats      `json:"volume"`
	PriceChange *PriceChangeStats `json:"priceChange"`
	Liquidity   *LiquidityStats   `json:"liquidity"`
	Fdv         *float64          `json:"fdv"`
	PairCreated int64             `json:"pairCreatedAt"`
}

// pairResponse is the envelope of /latest/dex/pairs/{pairAddress}.
// DexScreener fills "pair" for single lookups and "pairs" for searches;
// either may be present.
type pairResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pair          *Pair  `json:"pair"`
	Pairs         []Pair `json:"pairs"`
}
