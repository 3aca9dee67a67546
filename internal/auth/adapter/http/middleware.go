package http

import (
	"strings"
	"time"

	"showcase-cms/internal/auth/usecase"
	"showcase-cms/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const requestIDLocal = "requestid"

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase     usecase.AuthUsecaseInterface
	cookieName  string
	corsOrigins string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName, corsOrigins string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:     uc,
		cookieName:  cookieName,
		corsOrigins: corsOrigins,
	}
}

// CORS allows the admin front-end to call the API with credentials.
func (m *AuthMiddleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     m.corsOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,If-Match,X-Request-ID",
		ExposeHeaders:    "ETag,X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits credential endpoints to max requests per minute per client.
func (m *AuthMiddleware) RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "rate_limited",
				"message": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID assigns X-Request-ID. Pair it with RequestContext.
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: requestIDLocal,
	})
}

// RequestContext copies the request ID assigned by RequestID into the user context.
// Mount it directly after RequestID.
func (m *AuthMiddleware) RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestIDLocal).(string); ok && id != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// Protect returns middleware that requires an operator token
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := extractToken(c, m.cookieName)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthenticated",
				"message": "Authentication required",
			})
		}

		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "unauthenticated",
				"message": "Invalid token",
			})
		}

		ctx := c.UserContext()
		ctx = utils.WithUserID(ctx, claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// extractToken looks at the Authorization header, then the cookie, then ?token= (websocket clients).
func extractToken(c *fiber.Ctx, cookieName string) (string, bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token, true
		}
	}
	if token := c.Cookies(cookieName); token != "" {
		return token, true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// GetUserID returns the operator set by Protect.
func GetUserID(c *fiber.Ctx) (string, bool) {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	return userID, err == nil
}

// GetUserEmail returns the operator email set by Protect.
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email, err := utils.GetUserEmailFromContext(c.UserContext())
	return email, err == nil
}
