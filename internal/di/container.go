package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"showcase-cms/internal/auth"
	authconfig "showcase-cms/internal/auth/config"
	"showcase-cms/internal/content"
	contentconfig "showcase-cms/internal/content/config"
	"showcase-cms/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container owns connections and modules and shuts them down in reverse order.
type Container struct {
	mu       sync.RWMutex
	services map[reflect.Type]interface{}

	AuthModule    *auth.AuthModule
	ContentModule *content.ContentModule

	MongoClient *mongo.Client
	Redis       *redis.Client

	Logger logger.Logger
}

// NewContainer creates an empty container.
func NewContainer(log logger.Logger) *Container {
	return &Container{
		services: make(map[reflect.Type]interface{}),
		Logger:   log,
	}
}

// Connect opens MongoDB and Redis unless the content store is in memory.
func (c *Container) Connect(ctx context.Context, cfg *contentconfig.ContentConfig) error {
	if cfg.Store == contentconfig.StoreMemory {
		c.Logger.Warn("Skipping MongoDB and Redis: CONTENT_STORE=memory")
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	c.Logger.Info("MongoDB connection established successfully")

	rdb := contentconfig.NewRedisClient(&cfg.Redis)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		_ = rdb.Close()
		return fmt.Errorf("failed to ping Redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	c.Logger.Infof("Redis connection established at %s", cfg.Redis.GetAddr())

	c.mu.Lock()
	c.MongoClient = client
	c.Redis = rdb
	c.mu.Unlock()
	return nil
}

// InitializeAuth builds the auth module on the operator database, or in memory without Mongo.
func (c *Container) InitializeAuth(ctx context.Context, cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var db *mongo.Database
	if c.MongoClient != nil {
		db = c.MongoClient.Database(cfg.DatabaseName)
	}
	module, err := auth.NewAuthModule(ctx, cfg, c.Logger, db)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = module
	c.services[reflect.TypeOf(module).Elem()] = module
	return nil
}

// InitializeContent builds the content module. Call after Connect.
func (c *Container) InitializeContent(cfg *contentconfig.ContentConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var db *mongo.Database
	if c.MongoClient != nil {
		db = c.MongoClient.Database(cfg.DatabaseName)
	}
	module, err := content.NewContentModule(cfg, c.Logger, db, c.Redis)
	if err != nil {
		return fmt.Errorf("failed to create content module: %w", err)
	}
	c.ContentModule = module
	c.services[reflect.TypeOf(module).Elem()] = module
	return nil
}

// Register registers a service instance
func (c *Container) Register(service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	c.services[serviceType] = service
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	if service, exists := c.services[serviceType]; exists {
		return service, nil
	}
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	service, err := c.Resolve(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service is not of expected type %T", zero)
	}
	return typed, nil
}

// HealthCheck pings the backing stores. Memory mode is always healthy.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoClient != nil {
		if err := c.MongoClient.Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup releases connections in reverse order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	c.ContentModule = nil
	c.AuthModule = nil

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
		c.Redis = nil
	}
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect MongoDB: %w", err))
		}
		c.MongoClient = nil
	}

	c.services = make(map[reflect.Type]interface{})
	return errors.Join(errs...)
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
