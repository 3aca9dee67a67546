package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authconfig "showcase-cms/internal/auth/config"
	contenthttp "showcase-cms/internal/content/adapter/http"
	contentconfig "showcase-cms/internal/content/config"
	"showcase-cms/internal/di"
	"showcase-cms/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            string        `env:"SERVER_PORT" envDefault:"3000"`
	BodyLimit       int           `env:"SERVER_BODY_LIMIT" envDefault:"12582912"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger().WithComponent("server")

	contentCfg, err := contentconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load content configuration: %v", err)
	}
	authCfg, err := authconfig.LoadConfig()
	if err != nil {
		appLogger.Fatalf("Failed to load auth configuration: %v", err)
	}

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.Connect(ctx, contentCfg); err != nil {
		appLogger.Fatalf("Failed to connect backing stores: %v", err)
	}
	if err := container.InitializeAuth(ctx, authCfg); err != nil {
		appLogger.Fatalf("Failed to initialize auth module: %v", err)
	}
	if err := container.InitializeContent(contentCfg); err != nil {
		appLogger.Fatalf("Failed to initialize content module: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Showcase CMS",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    serverCfg.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			appLogger.WithContext(c.UserContext()).Errorf("HTTP error on %s %s: %v", c.Method(), c.Path(), err)
			return contenthttp.ErrorHandler(c, err)
		},
	})

	middleware := container.AuthModule.GetMiddleware()
	app.Use(recover.New())
	app.Use(middleware.RequestID(), middleware.RequestContext())
	app.Use(middleware.CORS())
	app.Use(middleware.SecurityHeaders())

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"store":     contentCfg.Store,
			"timestamp": time.Now().UTC(),
		})
	})

	container.AuthModule.RegisterRoutes(app.Group("/api/v1"))
	container.ContentModule.RegisterRoutes(app, container.AuthModule.Protect())

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server stopped: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
