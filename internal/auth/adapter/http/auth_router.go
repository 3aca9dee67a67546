package http

import (
	"errors"
	"time"

	"showcase-cms/internal/auth/domain/model"
	"showcase-cms/internal/auth/usecase"
	"showcase-cms/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// CookieSettings configures the token cookie set on login.
type CookieSettings struct {
	Name     string
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
	SameSite string
}

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	cookie  CookieSettings
	logger  logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cookie CookieSettings, log logger.Logger) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase: uc,
		cookie:  cookie,
		logger:  log.WithComponent("auth_http"),
	}
}

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	User        *model.User `json:"user,omitempty"`
	AccessToken string      `json:"accessToken"`
	ExpiresIn   int         `json:"expiresIn"`
}

// RegisterRoutes mounts /auth under router. Credential endpoints go through limit.
func (h *AuthHTTPHandler) RegisterRoutes(router fiber.Router, middleware *AuthMiddleware, limit fiber.Handler) {
	auth := router.Group("/auth")

	auth.Post("/register", limit, h.Register)
	auth.Post("/login", limit, h.Login)

	auth.Post("/refresh", middleware.Protect(), h.RefreshToken)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", middleware.Protect(), h.GetCurrentUser)
}

// Register handles operator registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_argument", "Invalid request body")
	}

	user, token, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		return h.failAuth(c, err)
	}

	h.setCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    TokenResponse{User: user, AccessToken: token, ExpiresIn: h.cookie.MaxAge},
	})
}

// Login handles operator login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_argument", "Invalid request body")
	}

	user, token, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		return h.failAuth(c, err)
	}

	h.setCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    TokenResponse{User: user, AccessToken: token, ExpiresIn: h.cookie.MaxAge},
	})
}

// Logout clears the cookie. Tokens are stateless and simply expire.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// RefreshToken swaps the presented token for a fresh one.
func (h *AuthHTTPHandler) RefreshToken(c *fiber.Ctx) error {
	token, _ := extractToken(c, h.cookie.Name)

	fresh, err := h.usecase.RefreshToken(c.UserContext(), token)
	if err != nil {
		return h.failAuth(c, err)
	}

	h.setCookie(c, fresh)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    TokenResponse{AccessToken: fresh, ExpiresIn: h.cookie.MaxAge},
	})
}

// GetCurrentUser returns the operator behind the token.
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, ok := GetUserID(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "unauthenticated", "Unauthorized")
	}

	user, err := h.usecase.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return h.failAuth(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

func (h *AuthHTTPHandler) failAuth(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidEmailFormat),
		errors.Is(err, model.ErrWeakPassword),
		errors.Is(err, model.ErrDisplayNameRequired):
		return fail(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, model.ErrEmailTaken):
		return fail(c, fiber.StatusConflict, "already_exists", "Email already registered")
	case errors.Is(err, model.ErrRegistrationClosed):
		return fail(c, fiber.StatusForbidden, "registration_closed", err.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "unauthenticated", "Invalid email or password")
	case errors.Is(err, model.ErrTokenInvalid), errors.Is(err, model.ErrUserNotFound):
		return fail(c, fiber.StatusUnauthorized, "unauthenticated", err.Error())
	}
	h.logger.WithContext(c.UserContext()).Errorf("Auth request failed: %v", err)
	return fail(c, fiber.StatusInternalServerError, "internal", "internal server error")
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   code,
		"message": message,
	})
}

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   h.cookie.MaxAge,
		Secure:   h.cookie.Secure,
		HTTPOnly: h.cookie.HTTPOnly,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(time.Duration(h.cookie.MaxAge) * time.Second),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HTTPOnly: h.cookie.HTTPOnly,
		SameSite: h.cookie.SameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
