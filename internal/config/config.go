package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects and configures the catalog store backend.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite or redis
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	RedisURL     string `mapstructure:"redis_url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// EnrichmentConfig configures the upstream sources and policies of the enrichment pipeline.
type EnrichmentConfig struct {
	FillPolicy        string        `mapstructure:"fill_policy"` // empty or heuristic
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
	WikipediaHosts    []string      `mapstructure:"wikipedia_hosts"`
	LibriVoxURL       string        `mapstructure:"librivox_url"`
	PhilosophersURL   string        `mapstructure:"philosophers_url"`
	AvatarURL         string        `mapstructure:"avatar_url"`
	MaxParagraphs     int           `mapstructure:"max_paragraphs"`
	MaxChars          int           `mapstructure:"max_chars"`
	PlaceholderQuotes bool          `mapstructure:"placeholder_quotes"`
}

// StorageConfig holds the object storage settings used for image mirroring.
type StorageConfig struct {
	S3Enabled bool   `mapstructure:"s3_enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	CDNDomain string `mapstructure:"cdn_domain"`
	Endpoint  string `mapstructure:"endpoint"`
}

// SeedConfig controls catalog bootstrap.
type SeedConfig struct {
	Path          string `mapstructure:"path"` // empty uses the embedded asset
	Bootstrap     bool   `mapstructure:"bootstrap"`
	EnrichOnStart bool   `mapstructure:"enrich_on_start"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "philosophy.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.redis_url", "redis://localhost:6379/0")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("enrichment.fill_policy", "empty")
	v.SetDefault("enrichment.timeout", 8*time.Second)
	v.SetDefault("enrichment.requests_per_second", 2.0)
	v.SetDefault("enrichment.user_agent", "PhilosophyCatalog/1.0 (catalog enrichment)")
	v.SetDefault("enrichment.wikipedia_hosts", []string{"https://es.wikipedia.org", "https://en.wikipedia.org"})
	v.SetDefault("enrichment.librivox_url", "https://librivox.org")
	v.SetDefault("enrichment.philosophers_url", "https://philosophersapi.com")
	v.SetDefault("enrichment.avatar_url", "https://ui-avatars.com/api/")
	v.SetDefault("enrichment.max_paragraphs", 3)
	v.SetDefault("enrichment.max_chars", 500)
	v.SetDefault("enrichment.placeholder_quotes", true)
	v.SetDefault("storage.s3_enabled", false)
	v.SetDefault("storage.bucket", "filosofia-app-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("seed.bootstrap", true)
	v.SetDefault("seed.enrich_on_start", false)
}

func bindEnvVars(v *viper.Viper) {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", p)
		}
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		v.Set("server.mode", mode)
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		v.Set("server.cors_origins", strings.Split(origins, ","))
	}

	// Database
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		v.Set("database.driver", driver)
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		v.Set("database.path", path)
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		v.Set("database.redis_url", url)
	}

	// Rate Limit
	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		v.Set("rate_limit.enabled", enabled == "true")
	}
	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			v.Set("rate_limit.requests_per_second", r)
		}
	}
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			v.Set("rate_limit.burst", b)
		}
	}

	// Enrichment
	if policy := os.Getenv("ENRICH_FILL_POLICY"); policy != "" {
		v.Set("enrichment.fill_policy", policy)
	}

	// Storage
	if enabled := os.Getenv("S3_ENABLED"); enabled != "" {
		v.Set("storage.s3_enabled", enabled == "true")
	}
	if bucket := os.Getenv("S3_BUCKET_IMAGES"); bucket != "" {
		v.Set("storage.bucket", bucket)
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		v.Set("storage.region", region)
	}
	if cdn := os.Getenv("CLOUDFRONT_DOMAIN"); cdn != "" {
		v.Set("storage.cdn_domain", cdn)
	}

	// Seed
	if path := os.Getenv("SEED_PATH"); path != "" {
		v.Set("seed.path", path)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.Mode != "debug" && c.Server.Mode != "release" && c.Server.Mode != "test" {
		return fmt.Errorf("invalid server mode: %s (must be 'debug', 'release', or 'test')", c.Server.Mode)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path cannot be empty")
		}
	case "redis":
		if c.Database.RedisURL == "" {
			return fmt.Errorf("redis url cannot be empty")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be 'sqlite' or 'redis')", c.Database.Driver)
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests_per_second must be positive")
	}

	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Enrichment.FillPolicy != "empty" && c.Enrichment.FillPolicy != "heuristic" {
		return fmt.Errorf("invalid fill policy: %s (must be 'empty' or 'heuristic')", c.Enrichment.FillPolicy)
	}

	if c.Enrichment.Timeout <= 0 {
		return fmt.Errorf("enrichment timeout must be positive")
	}

	if c.Enrichment.RequestsPerSecond <= 0 {
		return fmt.Errorf("enrichment requests_per_second must be positive")
	}

	if c.Storage.S3Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket cannot be empty when s3 is enabled")
	}

	return nil
}
