package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Alias1177/dexwatch/config"
	"github.com/Alias1177/dexwatch/internal/anomaly"
	"github.com/Alias1177/dexwatch/internal/api/dexscreener"
	"github.com/Alias1177/dexwatch/internal/api/jupiter"
	"github.com/Alias1177/dexwatch/internal/api/pocketuniverse"
	"github.com/Alias1177/dexwatch/internal/api/rugcheck"
	"github.com/Alias1177/dexwatch/internal/database"
	"github.com/Alias1177/dexwatch/internal/filter"
	"github.com/Alias1177/dexwatch/internal/monitor"
	"github.com/Alias1177/dexwatch/internal/notify"
	"github.com/Alias1177/dexwatch/models"
)

// bot wires the Telegram command surface to the shared monitor state.
type bot struct {
	api     *tgbotapi.BotAPI
	db      *database.DB
	fctx    *filter.Context
	mon     *monitor.Monitor
	swapper *jupiter.Client
	amount  float64
	logger  zerolog.Logger
}

func main() {
	// Настраиваем логгер и загружаем конфиг
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	lvl, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	if cfg.TelegramBotToken == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	watchCfg, err := config.LoadWatchConfig(cfg.WatchConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.WatchConfigPath).Msg("Failed to load watch config")
	}

	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second

	fctx := filter.NewContext(watchCfg.Filters, watchCfg.Blacklist)
	chain := filter.NewChain(fctx, chainOptions(cfg, watchCfg, requestTimeout))

	var notifier monitor.Notifier = notify.NewLogNotifier()
	if cfg.TelegramChatID != 0 {
		notifier = notify.NewTelegramNotifier(api, cfg.TelegramChatID)
	}

	mon := monitor.New(
		dexscreener.NewClient(dexscreener.ClientOptions{RequestTimeout: requestTimeout}),
		chain,
		db,
		anomaly.NewScorer(),
		notifier,
		watchCfg.Pairs,
		time.Duration(watchCfg.PollIntervalSec)*time.Second,
	)

	b := &bot{
		api:     api,
		db:      db,
		fctx:    fctx,
		mon:     mon,
		swapper: jupiter.NewClient(jupiter.ClientOptions{RequestTimeout: requestTimeout}),
		amount:  cfg.TradeAmountSOL,
		logger:  logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Цикл мониторинга живёт рядом с обработкой команд
	go mon.Run(ctx)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			watchCfg.Pairs = mon.Pairs()
			watchCfg.Blacklist = fctx.Blacklist()
			if err := watchCfg.Save(cfg.WatchConfigPath); err != nil {
				logger.Error().Err(err).Msg("Failed to save watch config")
			}
			logger.Info().Msg("Shutting down")
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			go b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())

	var reply string
	switch msg.Command() {
	case "start", "help":
		reply = "Commands:\n" +
			"/status - store and filter state\n" +
			"/watch <pair_address> - add a pair\n" +
			"/unwatch <pair_address> - remove a pair\n" +
			"/blacklist - show denylists\n" +
			"/blacklist coin|dev <value> - extend a denylist\n" +
			"/buy <token_address> - buy via swap relay\n" +
			"/sell <token_address> - sell via swap relay"
	case "status":
		reply = b.statusReply(ctx)
	case "watch":
		if len(args) != 1 {
			reply = "Usage: /watch <pair_address>"
			break
		}
		b.mon.Watch(args[0])
		reply = fmt.Sprintf("Watching %s", args[0])
	case "unwatch":
		if len(args) != 1 {
			reply = "Usage: /unwatch <pair_address>"
			break
		}
		b.mon.Unwatch(args[0])
		reply = fmt.Sprintf("Stopped watching %s", args[0])
	case "blacklist":
		reply = b.blacklistReply(args)
	case "buy":
		reply = b.tradeReply(ctx, models.TradeActionBuy, args)
	case "sell":
		reply = b.tradeReply(ctx, models.TradeActionSell, args)
	default:
		reply = "Unknown command, try /help"
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send reply")
	}
}

func (b *bot) statusReply(ctx context.Context) string {
	count, err := b.db.CountSnapshots(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Status query failed")
		return "Store unavailable, try again later"
	}

	thresholds := b.fctx.Thresholds()
	bl := b.fctx.Blacklist()

	return fmt.Sprintf(
		"📊 Status\nStored pairs: %d\nWatched pairs: %d\nMin liquidity: $%.0f\nMax 24h change: %.1f%%\nMin volume: $%.0f\nBlacklisted coins: %d\nBlacklisted devs: %d",
		count, len(b.mon.Pairs()),
		thresholds.MinLiquidity, thresholds.MaxPriceChange24h, thresholds.MinVolume,
		len(bl.Coins), len(bl.Devs),
	)
}

func (b *bot) blacklistReply(args []string) string {
	if len(args) == 0 {
		bl := b.fctx.Blacklist()
		return fmt.Sprintf(
			"Coins: %s\nDevs: %s",
			strings.Join(bl.Coins, ", "),
			strings.Join(bl.Devs, ", "),
		)
	}

	if len(args) != 2 {
		return "Usage: /blacklist coin|dev <value>"
	}

	switch args[0] {
	case "coin":
		b.fctx.BlacklistCoin(args[1])
		return fmt.Sprintf("Coin %s blacklisted", args[1])
	case "dev":
		b.fctx.BlacklistDev(args[1])
		return fmt.Sprintf("Dev %s blacklisted", args[1])
	default:
		return "Usage: /blacklist coin|dev <value>"
	}
}

func (b *bot) tradeReply(ctx context.Context, action models.TradeAction, args []string) string {
	if len(args) != 1 {
		return fmt.Sprintf("Usage: /%s <token_address>", action)
	}

	txHash, err := b.swapper.Swap(ctx, action, args[0], b.amount)
	if err != nil {
		b.logger.Error().Err(err).Str("token", args[0]).Msg("Trade failed")
		return fmt.Sprintf("Trade failed: %v", err)
	}

	return fmt.Sprintf("✅ %s submitted, tx %s", action, txHash)
}

// chainOptions wires the optional verdict sources the watch config asks for.
func chainOptions(cfg *config.Config, watchCfg *config.WatchConfig, requestTimeout time.Duration) filter.ChainOptions {
	opts := filter.ChainOptions{
		FakeVolumeMode:             watchCfg.FakeVolumeMode,
		RejectOnVerdictUnavailable: watchCfg.RejectOnVerdictUnavailable,
		VerdictTimeout:             requestTimeout,
	}

	if watchCfg.FakeVolumeMode == config.FakeVolumeModePocketUniverse {
		opts.FakeVolume = pocketuniverse.NewClient(pocketuniverse.ClientOptions{
			APIKey:         cfg.PocketUniverseAPIKey,
			RequestTimeout: requestTimeout,
		})
	}

	if watchCfg.EnableRugCheck || watchCfg.EnableSupplyCheck {
		rc := rugcheck.NewClient(rugcheck.ClientOptions{
			RequestTimeout: requestTimeout,
		})
		if watchCfg.EnableRugCheck {
			opts.Risk = rc
		}
		if watchCfg.EnableSupplyCheck {
			opts.Supply = rc
		}
	}

	return opts
}
