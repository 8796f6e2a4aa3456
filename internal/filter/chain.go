package filter

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/dexwatch/config"
	"github.com/Alias1177/dexwatch/models"
)

// Rejection reasons, one per chain stage.
const (
	ReasonLowLiquidity       = "low_liquidity"
	ReasonVolatility         = "volatility"
	ReasonLowVolume          = "low_volume"
	ReasonBlacklistedCoin    = "blacklisted_coin"
	ReasonBlacklistedDev     = "blacklisted_dev"
	ReasonFakeVolume         = "fake_volume"
	ReasonRugRisk            = "rug_risk"
	ReasonBundledSupply      = "bundled_supply"
	ReasonVerdictUnavailable = "verdict_unavailable"
)

// riskStatusGood is the only RugCheck report status that counts as a
// positive verdict, compared case-insensitively.
const riskStatusGood = "good"

// bundledSupplyMaxHolderPct is the single-holder supply share above which
// the token counts as bundled.
const bundledSupplyMaxHolderPct = 50.0

// FakeVolumeChecker is the external fake-volume verdict source.
type FakeVolumeChecker interface {
	IsFakeVolume(ctx context.Context, pairAddress string) (bool, error)
}

// RiskChecker is the external token risk report source.
type RiskChecker interface {
	ReportStatus(ctx context.Context, tokenAddress string) (string, error)
}

// SupplyChecker is the external holder-distribution source.
type SupplyChecker interface {
	TopHolders(ctx context.Context, tokenAddress string) (map[string]float64, error)
}

// ChainOptions selects the optional stages and the verdict policy.
type ChainOptions struct {
	// FakeVolumeMode picks the stage-6 strategy: the local ratio heuristic
	// or the external Pocket Universe verdict. The two are alternatives,
	// never combined.
	FakeVolumeMode string
	FakeVolume     FakeVolumeChecker // required for pocket_universe mode
	Risk           RiskChecker       // nil disables the rug-risk stage
	Supply         SupplyChecker     // nil disables the supply stage

	// RejectOnVerdictUnavailable maps an unreachable verdict source to a
	// rejection instead of a pass. Rejecting is the safe default.
	RejectOnVerdictUnavailable bool

	// VerdictTimeout bounds each external verdict call.
	VerdictTimeout time.Duration
}

// Chain is the ordered admission filter chain. Cheap local checks run
// first so a locally disqualified snapshot never costs a network call.
type Chain struct {
	fctx   *Context
	opts   ChainOptions
	logger zerolog.Logger
}

// NewChain builds the admission chain over a shared filter context.
func NewChain(fctx *Context, opts ChainOptions) *Chain {
	if opts.VerdictTimeout == 0 {
		opts.VerdictTimeout = 10 * time.Second
	}
	if opts.FakeVolumeMode == "" {
		opts.FakeVolumeMode = config.FakeVolumeModeLocal
	}
	return &Chain{
		fctx:   fctx,
		opts:   opts,
		logger: log.With().Str("component", "filter_chain").Logger(),
	}
}

// Evaluate runs the snapshot through every stage in order and
// short-circuits on the first rejection. Stages 1-5 are pure reads;
// negative external verdicts in the later stages extend the blacklists.
func (ch *Chain) Evaluate(ctx context.Context, snap models.Snapshot) models.Decision {
	thresholds := ch.fctx.Thresholds()

	// 1. Liquidity floor
	if snap.LiquidityUSD < thresholds.MinLiquidity {
		return models.Reject(ReasonLowLiquidity)
	}

	// 2. Volatility ceiling
	if math.Abs(snap.PriceChange24h) > thresholds.MaxPriceChange24h {
		return models.Reject(ReasonVolatility)
	}

	// 3. Volume floor
	if snap.Volume24h < thresholds.MinVolume {
		return models.Reject(ReasonLowVolume)
	}

	// 4. Coin denylist
	if ch.fctx.CoinBlacklisted(snap.BaseToken) {
		return models.Reject(ReasonBlacklistedCoin)
	}

	// 5. Dev denylist
	if ch.fctx.DevBlacklisted(snap.DevAddress) {
		return models.Reject(ReasonBlacklistedDev)
	}

	// 6. Fake volume, local heuristic or external verdict
	if dec := ch.checkFakeVolume(ctx, snap); !dec.Accepted {
		return dec
	}

	// 7. Rug risk report
	if dec := ch.checkRisk(ctx, snap); !dec.Accepted {
		return dec
	}

	// 8. Supply concentration
	if dec := ch.checkSupply(ctx, snap); !dec.Accepted {
		return dec
	}

	return models.Accept()
}

func (ch *Chain) checkFakeVolume(ctx context.Context, snap models.Snapshot) models.Decision {
	if ch.opts.FakeVolumeMode != config.FakeVolumeModePocketUniverse || ch.opts.FakeVolume == nil {
		if IsSuspiciousVolume(snap.LiquidityUSD, snap.Volume24h) {
			return models.Reject(ReasonFakeVolume)
		}
		return models.Accept()
	}

	callCtx, cancel := context.WithTimeout(ctx, ch.opts.VerdictTimeout)
	defer cancel()

	fake, err := ch.opts.FakeVolume.IsFakeVolume(callCtx, snap.PairAddress)
	if err != nil {
		return ch.onVerdictUnavailable(snap, "fake_volume", err)
	}
	if fake {
		// The verdict indicts the token, not just this observation.
		ch.fctx.BlacklistCoin(snap.BaseToken)
		return models.Reject(ReasonFakeVolume)
	}
	return models.Accept()
}

func (ch *Chain) checkRisk(ctx context.Context, snap models.Snapshot) models.Decision {
	if ch.opts.Risk == nil {
		return models.Accept()
	}

	callCtx, cancel := context.WithTimeout(ctx, ch.opts.VerdictTimeout)
	defer cancel()

	status, err := ch.opts.Risk.ReportStatus(callCtx, snap.DevAddress)
	if err != nil {
		return ch.onVerdictUnavailable(snap, "rug_risk", err)
	}
	if !strings.EqualFold(status, riskStatusGood) {
		ch.fctx.BlacklistCoin(snap.BaseToken)
		return models.Reject(ReasonRugRisk)
	}
	return models.Accept()
}

func (ch *Chain) checkSupply(ctx context.Context, snap models.Snapshot) models.Decision {
	if ch.opts.Supply == nil {
		return models.Accept()
	}

	callCtx, cancel := context.WithTimeout(ctx, ch.opts.VerdictTimeout)
	defer cancel()

	holders, err := ch.opts.Supply.TopHolders(callCtx, snap.DevAddress)
	if err != nil {
		return ch.onVerdictUnavailable(snap, "bundled_supply", err)
	}
	for holder, pct := range holders {
		if pct > bundledSupplyMaxHolderPct {
			ch.logger.Debug().
				Str("pair", snap.PairAddress).
				Str("holder", holder).
				Float64("pct", pct).
				Msg("Bundled supply detected")
			ch.fctx.BlacklistCoin(snap.BaseToken)
			ch.fctx.BlacklistDev(snap.DevAddress)
			return models.Reject(ReasonBundledSupply)
		}
	}
	return models.Accept()
}

// onVerdictUnavailable applies the configured policy when an external
// check cannot answer. The outcome is always explicit: either a
// "verdict_unavailable" rejection or a logged pass-through.
func (ch *Chain) onVerdictUnavailable(snap models.Snapshot, stage string, err error) models.Decision {
	if ch.opts.RejectOnVerdictUnavailable {
		ch.logger.Warn().Err(err).
			Str("pair", snap.PairAddress).
			Str("stage", stage).
			Msg("Verdict unavailable, rejecting")
		return models.Reject(ReasonVerdictUnavailable)
	}

	ch.logger.Warn().Err(err).
		Str("pair", snap.PairAddress).
		Str("stage", stage).
		Msg("Verdict unavailable, passing stage by policy")
	return models.Accept()
}
