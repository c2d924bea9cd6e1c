package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data sources
	Sources SourcesConfig

	// HTTP
	HTTP HTTPConfig

	// Redis (optional snapshot cache)
	Redis RedisConfig

	// Output + strategy
	OutputDir    string
	StrategyFile string
	UniverseFile string

	// Scheduler
	ScheduleCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// SourcesConfig holds the endpoints of every upstream the screener talks to
type SourcesConfig struct {
	YahooBaseURL       string
	YahooScreenerURL   string
	WikipediaSP500URL  string
	WikipediaNasdaq100 string
	DatasetSP500URL    string
}

// HTTPConfig holds outbound request pacing
type HTTPConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RequestDelay time.Duration // minimum gap between two requests
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Sources: SourcesConfig{
			YahooBaseURL:       getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			YahooScreenerURL:   getEnv("YAHOO_SCREENER_URL", "https://query1.finance.yahoo.com/v1/finance/screener"),
			WikipediaSP500URL:  getEnv("WIKIPEDIA_SP500_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
			WikipediaNasdaq100: getEnv("WIKIPEDIA_NASDAQ100_URL", "https://en.wikipedia.org/wiki/Nasdaq-100"),
			DatasetSP500URL:    getEnv("DATASET_SP500_URL", "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/main/data/constituents.csv"),
		},

		HTTP: HTTPConfig{
			Timeout:      getEnvAsDuration("HTTP_TIMEOUT", "15s"),
			MaxRetries:   getEnvAsInt("HTTP_MAX_RETRIES", 2),
			RequestDelay: getEnvAsDuration("REQUEST_DELAY", "500ms"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("CACHE_TTL", "6h"),
		},

		OutputDir:    getEnv("OUTPUT_DIR", "./output"),
		StrategyFile: getEnv("STRATEGY_FILE", ""),
		UniverseFile: getEnv("UNIVERSE_FILE", "universe_config.yaml"),

		// 평일 미국장 마감 이후
		ScheduleCron: getEnv("SCHEDULE_CRON", "0 30 17 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must not be negative")
	}
	if c.HTTP.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY must not be negative")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
