package config

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultConnMaxLifetime = time.Hour
)

// Options translates the config into go-redis options. Unparsable durations fall back to defaults.
func (c *RedisConfig) Options() *redis.Options {
	connMaxIdleTime, err := time.ParseDuration(c.ConnMaxIdleTime)
	if err != nil || connMaxIdleTime <= 0 {
		connMaxIdleTime = defaultConnMaxIdleTime
	}
	connMaxLifetime, err := time.ParseDuration(c.ConnMaxLifetime)
	if err != nil || connMaxLifetime <= 0 {
		connMaxLifetime = defaultConnMaxLifetime
	}

	opts := &redis.Options{
		Addr:         c.GetAddr(),
		Password:     c.Password,
		DB:           c.Database,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}
	if c.EnableTLS {
		opts.TLSConfig = &tls.Config{ServerName: c.Host, MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient creates a client for the history and notification streams.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(cfg.Options())
}
