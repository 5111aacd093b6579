package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Telegram
	BotToken            string
	ChatID              string
	TelegramPollTimeout time.Duration
	TelegramDebug       bool

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Cache
	RedisURL        string
	ReviewsCacheTTL time.Duration

	// Observability
	SentryDSN        string
	AppEnv           string
	LogLevel         string
	LogRetentionDays int

	// Server
	Port           string
	CORSOrigins    string
	BodyLimitBytes int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BotToken:            getEnv("BOT_TOKEN", ""),
		ChatID:              getEnv("CHAT_ID", ""),
		TelegramPollTimeout: parseDuration(getEnv("TELEGRAM_POLL_TIMEOUT", "60s"), 60*time.Second),
		TelegramDebug:       parseBool(getEnv("TELEGRAM_DEBUG", "false")),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "reviews"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisURL:        getEnv("REDIS_URL", ""),
		ReviewsCacheTTL: parseDuration(getEnv("REVIEWS_CACHE_TTL", "5m"), 5*time.Minute),

		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		Port:           getEnv("PORT", "3000"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		BodyLimitBytes: parseInt(getEnv("BODY_LIMIT_BYTES", "1048576"), 1<<20),
	}
}

// DSN returns DATABASE_URL verbatim when set, otherwise a key=value DSN
// assembled from the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// ValidateBot reports whether the Telegram credentials needed by serve are set.
func (c *Config) ValidateBot() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN environment variable is required"))
	}
	if c.ChatID == "" {
		errs = append(errs, errors.New("CHAT_ID environment variable is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
