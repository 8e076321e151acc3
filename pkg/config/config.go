package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Universe UniverseConfig `mapstructure:"universe"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g., "local", "prod"
}

type UniverseConfig struct {
	File string `mapstructure:"file"`
}

type RefreshConfig struct {
	Interval    time.Duration `mapstructure:"interval"`     // full fundamentals cycle
	EmptyRetry  time.Duration `mapstructure:"empty_retry"`  // idle retry when universe is empty
	SymbolDelay time.Duration `mapstructure:"symbol_delay"` // courtesy delay between per-symbol fetches
}

type StreamConfig struct {
	URL               string        `mapstructure:"url"`
	APIKey            string        `mapstructure:"api_key"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"`
	BackoffMax        time.Duration `mapstructure:"backoff_max"`
	RateLimitCooldown time.Duration `mapstructure:"rate_limit_cooldown"`
	MaxFailures       int           `mapstructure:"max_failures"`
	SubscribeDelay    time.Duration `mapstructure:"subscribe_delay"`
}

type CacheConfig struct {
	File string `mapstructure:"file"`
}

// DatabaseConfig is consumed only by the fundcache exporter.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Load .env into the system environment first (if it exists), so the
	// variables below are visible to viper as real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("universe.file", "universe.json")

	v.SetDefault("refresh.interval", time.Hour)
	v.SetDefault("refresh.empty_retry", 10*time.Second)
	v.SetDefault("refresh.symbol_delay", 500*time.Millisecond)

	v.SetDefault("stream.url", "wss://ws.finnhub.io")
	v.SetDefault("stream.api_key", "")
	v.SetDefault("stream.backoff_base", 5*time.Second)
	v.SetDefault("stream.backoff_max", 300*time.Second)
	v.SetDefault("stream.rate_limit_cooldown", 120*time.Second)
	v.SetDefault("stream.max_failures", 20)
	v.SetDefault("stream.subscribe_delay", 50*time.Millisecond)

	v.SetDefault("cache.file", "fundamentals_cache.json")

	v.SetDefault("database.dsn", "")

	// Map dot-notation keys to underscore env vars (e.g. "stream.api_key"
	// -> STREAM_API_KEY).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit binds so flat env vars land in the nested structs.
	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "universe.file")
	bindEnv(v, "refresh.interval", "refresh.empty_retry", "refresh.symbol_delay")
	bindEnv(v, "stream.url", "stream.api_key", "stream.backoff_base", "stream.backoff_max",
		"stream.rate_limit_cooldown", "stream.max_failures", "stream.subscribe_delay")
	bindEnv(v, "cache.file")
	bindEnv(v, "database.dsn")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	if cfg.Stream.BackoffBase <= 0 || cfg.Stream.BackoffMax < cfg.Stream.BackoffBase {
		return nil, fmt.Errorf("invalid backoff window: base=%v max=%v", cfg.Stream.BackoffBase, cfg.Stream.BackoffMax)
	}
	if cfg.Stream.MaxFailures <= 0 {
		return nil, fmt.Errorf("stream.max_failures must be positive")
	}

	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
