package notify

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/dexwatch/models"
)

// LogNotifier writes pipeline output to the process log. Used when no
// Telegram chat is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{
		logger: log.With().Str("component", "log_notifier").Logger(),
	}
}

// NotifySkip reports a rejected snapshot with its reason.
func (n *LogNotifier) NotifySkip(pairID, reason string) error {
	n.logger.Info().Str("pair", pairID).Str("reason", reason).Msg("Pair skipped")
	return nil
}

// NotifyAnomalies reports the flagged subset of a scoring pass.
func (n *LogNotifier) NotifyAnomalies(records []models.AnomalyRecord) error {
	for _, rec := range records {
		n.logger.Warn().
			Str("pair", rec.Snapshot.PairAddress).
			Str("base_token", rec.Snapshot.BaseToken).
			Float64("price_change_24h", rec.Snapshot.PriceChange24h).
			Float64("volume_24h", rec.Snapshot.Volume24h).
			Float64("liquidity_usd", rec.Snapshot.LiquidityUSD).
			Float64("score", rec.AnomalyScore).
			Msg("Anomaly detected")
	}
	return nil
}
