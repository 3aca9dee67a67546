package testutil

import (
	"time"

	"showcase-cms/internal/auth/config"
	"showcase-cms/internal/auth/usecase"
)

// StrongPassword satisfies the operator password policy.
const StrongPassword = "Sh0wcase!pass"

// Config returns an auth configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		JWTSecretKey:      "test-secret-key-32-characters-long-12345",
		JWTIssuer:         "showcase-cms-test",
		AccessTokenTTL:    time.Hour,
		CookieName:        "cms_auth_token",
		CookiePath:        "/",
		CookieHTTPOnly:    true,
		CookieSameSite:    "Lax",
		CORSOrigins:       "http://localhost:3000",
		UsersCollection:   "operators",
		AllowRegistration: false,
	}
}

// Operator returns a registration request for email.
func Operator(email string) usecase.RegisterRequest {
	return usecase.RegisterRequest{
		Email:       email,
		Password:    StrongPassword,
		DisplayName: "Operator " + email,
	}
}
