package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("ASSET_PUBLIC_BASE_URL", "https://cdn.example.org/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "showcase_content", cfg.DatabaseName)
	assert.Equal(t, "parents", cfg.ParentsCollection)
	assert.Equal(t, "assets", cfg.AssetBucket)
	assert.Equal(t, "https://cdn.example.org", cfg.AssetPublicBaseURL)
	assert.True(t, cfg.PlaceholderHeuristic)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddr())
	assert.Equal(t, int64(10000), cfg.Redis.StreamMaxLength)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("RECONCILE_PLACEHOLDER_HEURISTIC", "false")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.PlaceholderHeuristic)
	assert.Equal(t, "cache:6380", cfg.Redis.GetAddr())
}

func TestLoadConfig_MissingMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_MemoryStore(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("CONTENT_STORE", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)

	t.Setenv("CONTENT_STORE", "sqlite")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestContentConfig_Validate(t *testing.T) {
	cfg := &ContentConfig{MongoDBURI: "x", ParentsCollection: "p", AssetBucket: "a", MaxUploadBytes: 0}
	assert.Error(t, cfg.Validate())

	cfg.MaxUploadBytes = 1
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreMongoDB, cfg.Store)
	assert.Equal(t, int64(50), cfg.HistoryLimit)
}

func TestRedisConfig_Options(t *testing.T) {
	cfg := &RedisConfig{Host: "cache", Port: "6379", ConnMaxIdleTime: "bogus", ConnMaxLifetime: "2h", EnableTLS: true}

	opts := cfg.Options()

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, defaultConnMaxIdleTime, opts.ConnMaxIdleTime)
	assert.Equal(t, 2*time.Hour, opts.ConnMaxLifetime)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache", opts.TLSConfig.ServerName)
}
