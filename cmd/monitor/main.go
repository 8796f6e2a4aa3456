package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/Alias1177/dexwatch/config"
	"github.com/Alias1177/dexwatch/internal/anomaly"
	"github.com/Alias1177/dexwatch/internal/api/dexscreener"
	"github.com/Alias1177/dexwatch/internal/api/pocketuniverse"
	"github.com/Alias1177/dexwatch/internal/api/rugcheck"
	"github.com/Alias1177/dexwatch/internal/database"
	"github.com/Alias1177/dexwatch/internal/filter"
	"github.com/Alias1177/dexwatch/internal/monitor"
	"github.com/Alias1177/dexwatch/internal/notify"
)

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

	watchCfg, err := config.LoadWatchConfig(cfg.WatchConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.WatchConfigPath).Msg("Failed to load watch config")
	}
	if len(watchCfg.Pairs) == 0 {
		logger.Fatal().Msg("No pairs configured to watch")
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

	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second

	fetcher := dexscreener.NewClient(dexscreener.ClientOptions{
		RequestTimeout: requestTimeout,
	})

	fctx := filter.NewContext(watchCfg.Filters, watchCfg.Blacklist)
	chain := filter.NewChain(fctx, buildChainOptions(cfg, watchCfg, requestTimeout))

	var notifier monitor.Notifier = notify.NewLogNotifier()
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
		}
		logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
		notifier = notify.NewTelegramNotifier(bot, cfg.TelegramChatID)
	}

	m := monitor.New(
		fetcher,
		chain,
		db,
		anomaly.NewScorer(),
		notifier,
		watchCfg.Pairs,
		time.Duration(watchCfg.PollIntervalSec)*time.Second,
	)

	// Останавливаемся аккуратно между циклами
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m.Run(ctx)

	// Persist blacklist entries the chain appended at runtime.
	watchCfg.Blacklist = fctx.Blacklist()
	if err := watchCfg.Save(cfg.WatchConfigPath); err != nil {
		logger.Error().Err(err).Msg("Failed to save watch config")
	} else {
		logger.Info().Msg("Watch config saved")
	}
}

// buildChainOptions wires the optional verdict sources the watch config
// asks for.
func buildChainOptions(cfg *config.Config, watchCfg *config.WatchConfig, requestTimeout time.Duration) filter.ChainOptions {
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
