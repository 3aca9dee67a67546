package content

import (
	"context"
	"fmt"
	"time"

	httpadapter "showcase-cms/internal/content/adapter/http"
	"showcase-cms/internal/content/adapter/persistence/memory"
	mongodbpersistence "showcase-cms/internal/content/adapter/persistence/mongodb"
	"showcase-cms/internal/content/adapter/persistence/streams"
	"showcase-cms/internal/content/config"
	"showcase-cms/internal/content/domain/repository"
	"showcase-cms/internal/content/domain/service"
	"showcase-cms/internal/content/seed"
	"showcase-cms/internal/content/usecase"
	"showcase-cms/internal/shared/eventbus"
	"showcase-cms/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContentModule wires the document store: repositories, usecases and HTTP adapters.
type ContentModule struct {
	Config        *config.ContentConfig
	Seeds         *seed.Catalog
	EventBus      *eventbus.EventBus
	Content       usecase.ContentUsecase
	Assets        usecase.AssetUsecase
	Notifications usecase.NotificationUsecase
	Handler       *httpadapter.ContentHandler
	Feed          *httpadapter.ChangeFeed
	Logger        logger.Logger
}

type backends struct {
	parents  repository.ParentRepository
	history  repository.ChangeHistory
	notifier repository.Notifier
	assets   repository.AssetStorage
}

// NewContentModule builds the module. db and redisClient are only used by the mongodb store.
func NewContentModule(cfg *config.ContentConfig, log logger.Logger, db *mongo.Database, redisClient *redis.Client) (*ContentModule, error) {
	log.Info("Initializing Content Module...")

	catalog, err := seed.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback seeds: %w", err)
	}

	var b *backends
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("CONTENT_STORE=memory: content is kept in process memory only")
		b = memoryBackends()
	default:
		b, err = mongoBackends(cfg, log, db, redisClient)
		if err != nil {
			return nil, err
		}
	}

	bus := eventbus.NewEventBus(log)
	resolver := catalog.Resolver()

	contentUC := usecase.NewContentUsecase(usecase.ContentDeps{
		Repo:       b.parents,
		History:    b.history,
		Events:     bus,
		Seeds:      catalog,
		Reconciler: service.NewReconciler(service.WithPlaceholderHeuristic(cfg.PlaceholderHeuristic)),
		Validator:  service.MustNewValidator(nil),
		Resolver:   resolver,
		Logger:     log,
		MaxHistory: cfg.HistoryLimit,
	})
	assetUC := usecase.NewAssetUsecase(usecase.AssetDeps{
		Storage:       b.assets,
		Resolver:      resolver,
		Events:        bus,
		Logger:        log,
		PublicBaseURL: cfg.AssetPublicBaseURL,
		MaxBytes:      cfg.MaxUploadBytes,
	})
	notificationUC := usecase.NewNotificationUsecase(b.notifier, log)

	log.Info("Content Module initialized successfully.")
	return &ContentModule{
		Config:        cfg,
		Seeds:         catalog,
		EventBus:      bus,
		Content:       contentUC,
		Assets:        assetUC,
		Notifications: notificationUC,
		Handler:       httpadapter.NewContentHandler(contentUC, assetUC, notificationUC, log),
		Feed:          httpadapter.NewChangeFeed(bus, log),
		Logger:        log,
	}, nil
}

func memoryBackends() *backends {
	return &backends{
		parents:  memory.NewParentRepository(),
		history:  memory.NewChangeHistory(),
		notifier: memory.NewNotifier(),
		assets:   memory.NewAssetStorage(),
	}
}

func mongoBackends(cfg *config.ContentConfig, log logger.Logger, db *mongo.Database, redisClient *redis.Client) (*backends, error) {
	if db == nil || redisClient == nil {
		return nil, fmt.Errorf("content store %q needs a MongoDB database and a Redis client", cfg.Store)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mongodbpersistence.EnsureIndexes(ctx, db, cfg.ParentsCollection); err != nil {
		return nil, fmt.Errorf("failed to ensure parent indexes: %w", err)
	}

	assets, err := mongodbpersistence.NewGridFSAssetStorage(db, cfg.AssetBucket, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset bucket: %w", err)
	}
	log.Info("ParentRepository, GridFS asset storage and Redis streams initialized.")

	return &backends{
		parents:  mongodbpersistence.NewParentRepository(db, cfg.ParentsCollection, log),
		history:  streams.NewHistoryStore(redisClient, cfg.Redis.StreamMaxLength, log),
		notifier: streams.NewStreamNotifier(redisClient, cfg.Redis.StreamMaxLength, log),
		assets:   assets,
	}, nil
}

// RegisterRoutes mounts the REST API and the change feed. protect guards mutating routes.
func (m *ContentModule) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	m.Handler.RegisterRoutes(router, protect)
	m.Feed.RegisterRoutes(router)
}
