package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/caarlos0/env/v6"
)

// RedisConfig configures the change-history and notification streams.
type RedisConfig struct {
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	Database        int    `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool   `env:"REDIS_ENABLE_TLS" envDefault:"false"`
	ConnMaxIdleTime string `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime string `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
	// StreamMaxLength caps each history stream (approximate trim on XADD).
	StreamMaxLength int64 `env:"REDIS_STREAM_MAX_LENGTH" envDefault:"10000"`
}

// GetAddr returns host:port.
func (c *RedisConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Storage backends selectable with CONTENT_STORE.
const (
	StoreMongoDB = "mongodb"
	StoreMemory  = "memory"
)

// ContentConfig holds configuration for the content module.
type ContentConfig struct {
	// Store is mongodb (Mongo, GridFS, Redis streams) or memory (local development).
	Store             string `env:"CONTENT_STORE" envDefault:"mongodb"`
	MongoDBURI        string `env:"MONGODB_URI"`
	DatabaseName      string `env:"CONTENT_DATABASE" envDefault:"showcase_content"`
	ParentsCollection string `env:"PARENTS_COLLECTION" envDefault:"parents"`
	AssetBucket       string `env:"ASSET_BUCKET" envDefault:"assets"`
	// AssetPublicBaseURL prefixes uploaded asset URLs; empty yields server-relative URLs.
	AssetPublicBaseURL string `env:"ASSET_PUBLIC_BASE_URL"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	// PlaceholderHeuristic keeps name/description sniffing on top of the seeded flag.
	PlaceholderHeuristic bool  `env:"RECONCILE_PLACEHOLDER_HEURISTIC" envDefault:"true"`
	HistoryLimit         int64 `env:"HISTORY_LIMIT" envDefault:"50"`

	Redis RedisConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*ContentConfig, error) {
	cfg := &ContentConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load content configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.AssetPublicBaseURL = strings.TrimRight(cfg.AssetPublicBaseURL, "/")
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *ContentConfig) Validate() error {
	switch c.Store {
	case "", StoreMongoDB:
		c.Store = StoreMongoDB
		if c.MongoDBURI == "" {
			return errors.New("MONGODB_URI environment variable is not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CONTENT_STORE must be %q or %q, got %q", StoreMongoDB, StoreMemory, c.Store)
	}
	if c.ParentsCollection == "" || c.AssetBucket == "" {
		return errors.New("PARENTS_COLLECTION and ASSET_BUCKET must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	return nil
}
