package auth

import (
	"context"
	"fmt"

	authhttp "showcase-cms/internal/auth/adapter/http"
	"showcase-cms/internal/auth/adapter/persistence/memory"
	"showcase-cms/internal/auth/adapter/persistence/mongodb"
	"showcase-cms/internal/auth/adapter/security"
	"showcase-cms/internal/auth/config"
	"showcase-cms/internal/auth/domain/repository"
	"showcase-cms/internal/auth/usecase"
	"showcase-cms/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// credentialRequestsPerMinute bounds login and register attempts per client.
const credentialRequestsPerMinute = 10

// AuthModule wires operator authentication: store, tokens, usecase and routes.
type AuthModule struct {
	repository repository.UserRepository
	tokenSvc   repository.TokenService
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewAuthModule creates the module. A nil db keeps operators in memory.
func NewAuthModule(ctx context.Context, cfg *config.Config, log logger.Logger, db *mongo.Database) (*AuthModule, error) {
	var users repository.UserRepository
	if db == nil {
		log.Warn("Operator accounts are kept in memory and are lost on restart")
		users = memory.NewUserRepository()
	} else {
		repo, err := mongodb.NewUserRepository(ctx, db, cfg.UsersCollection)
		if err != nil {
			return nil, fmt.Errorf("failed to create user repository: %w", err)
		}
		users = repo
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authUsecase := usecase.NewAuthUsecase(users, tokenSvc, cfg, log)

	handler := authhttp.NewAuthHTTPHandler(authUsecase, authhttp.CookieSettings{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.AccessTokenTTL.Seconds()),
		Secure:   cfg.CookieSecure,
		HTTPOnly: cfg.CookieHTTPOnly,
		SameSite: cfg.CookieSameSite,
	}, log)

	return &AuthModule{
		repository: users,
		tokenSvc:   tokenSvc,
		usecase:    authUsecase,
		handler:    handler,
		middleware: authhttp.NewAuthMiddleware(authUsecase, cfg.CookieName, cfg.CORSOrigins),
		config:     cfg,
	}, nil
}

// RegisterRoutes mounts /auth under router.
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.RegisterRoutes(router, am.middleware, am.middleware.RateLimiter(credentialRequestsPerMinute))
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// Protect is the handler guarding operator-only routes.
func (am *AuthModule) Protect() fiber.Handler {
	return am.middleware.Protect()
}
