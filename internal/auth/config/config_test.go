package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("COOKIE_SAME_SITE", "strict")
	t.Setenv("ALLOW_REGISTRATION", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Strict", cfg.CookieSameSite)
	assert.True(t, cfg.AllowRegistration)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "showcase-cms", cfg.JWTIssuer)
	assert.Equal(t, "operators", cfg.UsersCollection)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{JWTSecretKey: "k", AccessTokenTTL: time.Hour, CookieSameSite: "sideways"}
	assert.Error(t, cfg.Validate())

	cfg.CookieSameSite = "none"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "None", cfg.CookieSameSite)

	cfg.AccessTokenTTL = 0
	assert.Error(t, cfg.Validate())
}
