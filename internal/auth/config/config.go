package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config holds all configuration for the auth module.
type Config struct {
	// MongoDB Configuration. Unused when the operator store is in memory.
	MongoDBURI      string `env:"MONGODB_URI"`
	DatabaseName    string `env:"DATABASE_NAME" envDefault:"showcase_auth"`
	UsersCollection string `env:"USERS_COLLECTION" envDefault:"operators"`

	// JWT Configuration
	JWTSecretKey   string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"showcase-cms"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`

	// AllowRegistration opens /register to anyone. The first operator can always register.
	AllowRegistration bool `env:"ALLOW_REGISTRATION" envDefault:"false"`

	// Cookie Configuration
	CookieName     string `env:"COOKIE_NAME" envDefault:"cms_auth_token"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"`

	// CORSOrigins is the comma-separated list of admin front-end origins.
	CORSOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:3000"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load auth configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values and normalizes CookieSameSite.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt_secret_key is required")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("access_token_ttl must be positive")
	}

	c.CookieSameSite = cases.Title(language.English).String(strings.ToLower(c.CookieSameSite))
	switch c.CookieSameSite {
	case "Lax", "Strict", "None":
	default:
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}
	return nil
}
