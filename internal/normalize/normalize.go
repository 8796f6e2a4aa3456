package normalize

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Alias1177/dexwatch/internal/api/dexscreener"
	"github.com/Alias1177/dexwatch/models"
)

// FromPair flattens a raw DexScreener pair into the canonical snapshot.
// Every required field must be present and well-typed; a missing field is
// a hard models.ErrMalformedRecord failure, never a silent zero, because
// the filter chain compares these numbers against thresholds.
func FromPair(raw dexscreener.Pair) (models.Snapshot, error) {
	if raw.PairAddress == "" {
		return models.Snapshot{}, fmt.Errorf("%w: missing pairAddress", models.ErrMalformedRecord)
	}
	if raw.BaseToken == nil || raw.BaseToken.Name == "" {
		return models.Snapshot{}, fmt.Errorf("%w: missing baseToken", models.ErrMalformedRecord)
	}
	if raw.BaseToken.Address == "" {
		return models.Snapshot{}, fmt.Errorf("%w: missing baseToken.address", models.ErrMalformedRecord)
	}
	if raw.QuoteToken == nil || raw.QuoteToken.Name == "" {
		return models.Snapshot{}, fmt.Errorf("%w: missing quoteToken", models.ErrMalformedRecord)
	}
	if raw.Volume == nil || raw.Volume.H24 == nil {
		return models.Snapshot{}, fmt.Errorf("%w: missing volume.h24", models.ErrMalformedRecord)
	}
	if raw.Liquidity == nil || raw.Liquidity.USD == nil {
		return models.Snapshot{}, fmt.Errorf("%w: missing liquidity.usd", models.ErrMalformedRecord)
	}
	if raw.PriceChange == nil || raw.PriceChange.H24 == nil {
		return models.Snapshot{}, fmt.Errorf("%w: missing priceChange.h24", models.ErrMalformedRecord)
	}
	if raw.Fdv == nil {
		return models.Snapshot{}, fmt.Errorf("%w: missing fdv", models.ErrMalformedRecord)
	}

	// DexScreener serializes the USD price as a string.
	price, err := strconv.ParseFloat(raw.PriceUsd, 64)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: bad priceUsd %q", models.ErrMalformedRecord, raw.PriceUsd)
	}

	return models.Snapshot{
		PairAddress:    raw.PairAddress,
		BaseToken:      raw.BaseToken.Name,
		QuoteToken:     raw.QuoteToken.Name,
		Price:          price,
		Volume24h:      *raw.Volume.H24,
		LiquidityUSD:   *raw.Liquidity.USD,
		MarketCap:      *raw.Fdv,
		PriceChange24h: *raw.PriceChange.H24,
		DevAddress:     raw.BaseToken.Address,
		UpdatedAt:      time.Now().UTC(),
	}, nil
}
