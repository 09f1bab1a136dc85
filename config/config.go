// Package config loads service configuration from an optional
// config.json base file with environment variable overrides on top.
// A .env file, when present, is loaded into the environment first.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerConfig   ServerConfig   `json:"server"`
	BinanceConfig  BinanceConfig  `json:"binance"`
	ScannerConfig  ScannerConfig  `json:"scanner"`
	RedisConfig    RedisConfig    `json:"redis"`
	DatabaseConfig DatabaseConfig `json:"database"`
	LoggingConfig  LoggingConfig  `json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	ProductionMode bool   `json:"production_mode"`
}

// BinanceConfig holds market data provider configuration
type BinanceConfig struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
	BaseURL   string `json:"base_url"`
	MockMode  bool   `json:"mock_mode"`
}

// ScannerConfig holds watchlist scanning configuration
type ScannerConfig struct {
	Watchlist      []string      `json:"watchlist"`
	LookbackDays   int           `json:"lookback_days"`
	Pace           time.Duration `json:"pace"`
	DefaultGateSet string        `json:"default_gate_set"`
	LoopEnabled    bool          `json:"loop_enabled"`
	LoopInterval   time.Duration `json:"loop_interval"`
}

// RedisConfig holds the candle cache configuration
type RedisConfig struct {
	Enabled  bool          `json:"enabled"`
	Addr     string        `json:"addr"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	TTL      time.Duration `json:"ttl"`
}

// DatabaseConfig holds scan history persistence configuration.
// An empty DSN disables history.
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level      string `json:"level"`
	JSONFormat bool   `json:"json_format"`
}

// Load reads config.json when present, then applies environment
// overrides on top.
func Load() (*Config, error) {
	// Ignore a missing .env; environment may be set by the runtime.
	_ = godotenv.Load()

	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.ServerConfig.Host = getEnvOrDefault("SERVER_HOST", cfg.ServerConfig.Host)
	cfg.ServerConfig.Port = getEnvIntOrDefault("SERVER_PORT", cfg.ServerConfig.Port)
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("PRODUCTION_MODE", boolString(cfg.ServerConfig.ProductionMode)) == "true"

	cfg.BinanceConfig.APIKey = getEnvOrDefault("BINANCE_API_KEY", cfg.BinanceConfig.APIKey)
	cfg.BinanceConfig.SecretKey = getEnvOrDefault("BINANCE_SECRET_KEY", cfg.BinanceConfig.SecretKey)
	cfg.BinanceConfig.BaseURL = getEnvOrDefault("BINANCE_BASE_URL", cfg.BinanceConfig.BaseURL)
	cfg.BinanceConfig.MockMode = getEnvOrDefault("MOCK_MODE", boolString(cfg.BinanceConfig.MockMode)) == "true"

	if v := os.Getenv("SCANNER_WATCHLIST"); v != "" {
		cfg.ScannerConfig.Watchlist = splitList(v)
	}
	cfg.ScannerConfig.LookbackDays = getEnvIntOrDefault("SCANNER_LOOKBACK_DAYS", cfg.ScannerConfig.LookbackDays)
	cfg.ScannerConfig.Pace = getEnvDurationOrDefault("SCANNER_PACE", cfg.ScannerConfig.Pace)
	cfg.ScannerConfig.DefaultGateSet = getEnvOrDefault("SCANNER_DEFAULT_GATE_SET", cfg.ScannerConfig.DefaultGateSet)
	cfg.ScannerConfig.LoopEnabled = getEnvOrDefault("SCANNER_LOOP_ENABLED", boolString(cfg.ScannerConfig.LoopEnabled)) == "true"
	cfg.ScannerConfig.LoopInterval = getEnvDurationOrDefault("SCANNER_LOOP_INTERVAL", cfg.ScannerConfig.LoopInterval)

	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolString(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Addr = getEnvOrDefault("REDIS_ADDR", cfg.RedisConfig.Addr)
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.TTL = getEnvDurationOrDefault("REDIS_TTL", cfg.RedisConfig.TTL)

	cfg.DatabaseConfig.DSN = getEnvOrDefault("DATABASE_DSN", cfg.DatabaseConfig.DSN)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", boolString(cfg.LoggingConfig.JSONFormat)) == "true"
}

func applyDefaults(cfg *Config) {
	if cfg.ServerConfig.Host == "" {
		cfg.ServerConfig.Host = "0.0.0.0"
	}
	if cfg.ServerConfig.Port == 0 {
		cfg.ServerConfig.Port = 8080
	}
	if len(cfg.ScannerConfig.Watchlist) == 0 {
		cfg.ScannerConfig.Watchlist = []string{
			"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT",
			"ADAUSDT", "DOGEUSDT", "AVAXUSDT", "LINKUSDT", "DOTUSDT",
		}
	}
	if cfg.ScannerConfig.LookbackDays == 0 {
		cfg.ScannerConfig.LookbackDays = 60
	}
	if cfg.ScannerConfig.Pace == 0 {
		cfg.ScannerConfig.Pace = 300 * time.Millisecond
	}
	if cfg.ScannerConfig.DefaultGateSet == "" {
		cfg.ScannerConfig.DefaultGateSet = "liquidity-hunt"
	}
	if cfg.ScannerConfig.LoopInterval == 0 {
		cfg.ScannerConfig.LoopInterval = 5 * time.Minute
	}
	if cfg.RedisConfig.Addr == "" {
		cfg.RedisConfig.Addr = "localhost:6379"
	}
	if cfg.RedisConfig.TTL == 0 {
		cfg.RedisConfig.TTL = 5 * time.Minute
	}
	if cfg.LoggingConfig.Level == "" {
		cfg.LoggingConfig.Level = "info"
	}
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &config, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
