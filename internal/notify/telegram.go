package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/dexwatch/models"
)

// TelegramNotifier relays pipeline output to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier creates a notifier bound to one chat.
func NewTelegramNotifier(bot *tgbotapi.BotAPI, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// NotifySkip reports a rejected snapshot with its reason.
func (n *TelegramNotifier) NotifySkip(pairID, reason string) error {
	text := fmt.Sprintf("⏭ Skipping %s: %s", pairID, reason)
	return n.send(text)
}

// NotifyAnomalies reports the flagged subset of a scoring pass.
func (n *TelegramNotifier) NotifyAnomalies(records []models.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("🚨 Anomalies detected\n")
	for _, rec := range records {
		snap := rec.Snapshot
		sb.WriteString(fmt.Sprintf(
			"\n%s/%s (%s)\nPrice change 24h: %.2f%%\nVolume 24h: $%.0f\nLiquidity: $%.0f\nScore: %.2f\n",
			snap.BaseToken, snap.QuoteToken, snap.PairAddress,
			snap.PriceChange24h, snap.Volume24h, snap.LiquidityUSD, rec.AnomalyScore,
		))
	}

	return n.send(sb.String())
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("Failed to send Telegram message")
		return err
	}
	return nil
}
