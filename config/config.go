package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds environment-supplied configuration: credentials, DB
// connection parameters, and process-level knobs. Filter thresholds and
// blacklists live in the JSON watch config (see file.go) because the
// process writes blacklist growth back to it.
type Config struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"-"`
	DBName     string `env:"DB_NAME" envDefault:"dexwatch"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" envDefault:"-"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	PocketUniverseAPIKey string `env:"POCKET_UNIVERSE_API_KEY" envDefault:"-"`

	WatchConfigPath string `env:"WATCH_CONFIG_PATH" envDefault:"config.json"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds

	TradeAmountSOL float64 `env:"TRADE_AMOUNT_SOL" envDefault:"0.5"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "dexwatch")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	cfg.PocketUniverseAPIKey = os.Getenv("POCKET_UNIVERSE_API_KEY")

	cfg.WatchConfigPath = getEnvWithDefault("WATCH_CONFIG_PATH", "config.json")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)

	cfg.TradeAmountSOL = getEnvFloatWithDefault("TRADE_AMOUNT_SOL", 0.5)

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
