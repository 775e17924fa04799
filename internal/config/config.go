package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	PriceFeed  PriceFeedConfig
	Screenshot ScreenshotConfig
	Refresh    RefreshConfig
	LogLevel   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the snapshot cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers         []string
	WatchlistTopic  string
	PriceTicksTopic string
	GroupID         string
}

// PriceFeedConfig holds upstream market data configuration
type PriceFeedConfig struct {
	AlphaVantageURL string
	AlphaVantageKey string
	CoinGeckoURL    string
	Timeout         time.Duration
}

// ScreenshotConfig holds the upload and AI analysis configuration
type ScreenshotConfig struct {
	UploadDir string
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
}

// RefreshConfig holds the background price refresh cadence
type RefreshConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stocktracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:         []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			WatchlistTopic:  getEnv("KAFKA_WATCHLIST_TOPIC", "watchlist-events"),
			PriceTicksTopic: getEnv("KAFKA_PRICE_TICKS_TOPIC", "price-ticks"),
			GroupID:         getEnv("KAFKA_GROUP_ID", "stock-tracker"),
		},
		PriceFeed: PriceFeedConfig{
			AlphaVantageURL: getEnv("ALPHAVANTAGE_URL", "https://www.alphavantage.co"),
			AlphaVantageKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
			CoinGeckoURL:    getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
			Timeout:         getEnvDuration("PRICE_FEED_TIMEOUT", 10*time.Second),
		},
		Screenshot: ScreenshotConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			AIAPIKey:  getEnv("AI_API_KEY", ""),
			AIBaseURL: getEnv("AI_BASE_URL", "https://api.anthropic.com"),
			AIModel:   getEnv("AI_MODEL", "claude-3-5-haiku-20241022"),
		},
		Refresh: RefreshConfig{
			Interval:   getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
			StaleAfter: getEnvDuration("REFRESH_STALE_AFTER", 2*time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
