package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the factor pipeline
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server (read-only API)
	Port string
	Env  string // development, staging, production

	// Pipeline I/O
	DataPath       string // dictionary-of-tables dataset (.json, .json.bz2, .parquet, .csv)
	ExportDir      string // flat CSV exports
	StrategyConfig string // strategy YAML; empty means built-in defaults

	// Database (optional result persistence)
	Database DatabaseConfig

	// Redis (optional report cache)
	Redis RedisConfig

	// Remote dataset download (DATA_PATH as http(s) URL)
	HTTP HTTPConfig

	// Scheduler
	RebalanceCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether result persistence is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL       string        // redis://[:password@]host:port/db
	ReportTTL time.Duration // cached report lifetime
}

// Enabled reports whether the report cache is configured
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// HTTPConfig holds the dataset download client configuration
type HTTPConfig struct {
	CacheDir     string        // downloaded datasets are kept here
	Timeout      time.Duration // per request
	MaxRetries   int
	RequestsPerS float64 // client-side pacing
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		DataPath:       getEnv("DATA_PATH", "multifactor_data_2017_2022.json.bz2"),
		ExportDir:      getEnv("EXPORT_DIR", "."),
		StrategyConfig: getEnv("STRATEGY_CONFIG", ""),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			ReportTTL: getEnvAsDuration("REDIS_REPORT_TTL", "24h"),
		},

		HTTP: HTTPConfig{
			CacheDir:     getEnv("DATA_CACHE_DIR", filepath.Join(os.TempDir(), "aegis-factor")),
			Timeout:      getEnvAsDuration("HTTP_TIMEOUT", "5m"),
			MaxRetries:   getEnvAsInt("HTTP_MAX_RETRIES", 3),
			RequestsPerS: getEnvAsFloat("HTTP_RATE_LIMIT", 1),
		},

		// 매월 1일 18:00 (초 단위 포함)
		RebalanceCron: getEnv("REBALANCE_CRON", "0 0 18 1 * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataPath == "" {
		return fmt.Errorf("DATA_PATH must not be empty")
	}

	if c.HTTP.RequestsPerS <= 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must be positive")
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
