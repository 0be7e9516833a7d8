package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"colorizer-backend/internal/config"
	"colorizer-backend/internal/domains/image/gateway/deoldify"
	imageHandler "colorizer-backend/internal/domains/image/handler"
	imageRepo "colorizer-backend/internal/domains/image/repository"
	imageService "colorizer-backend/internal/domains/image/service"
	infraCache "colorizer-backend/internal/infrastructure/cache"
	"colorizer-backend/internal/infrastructure/database"
	"colorizer-backend/internal/infrastructure/storage"
	"colorizer-backend/pkg/cache"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application and is the root
// of the dependency graph. All components are singletons.
type Container struct {
	// Infrastructure layer, shared across domains
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client

	// Repository layer
	ImageRepo imageRepo.ImageRepository

	// Service layer
	ImageService imageService.ImageService

	// Handler layer
	ImageHandler *imageHandler.Handler
}

// NewContainer builds the full dependency graph in order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	if err := imageRepo.EnsureSchema(context.Background(), db.Pool); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	if err := redisCache.Connect(context.Background()); err != nil {
		// Redis is an acceleration layer, not a dependency the API
		// cannot live without.
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Cache = redisCache

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		// Uploads still work without the archive, records just keep
		// data URLs only.
		log.Printf("⚠️  MinIO connection failed (non-critical): %v", err)
	} else {
		c.Storage = minioStorage
		log.Println("✅ MinIO connected")
	}

	// ========================================
	// STEP 5: INITIALIZE TASK QUEUE CLIENT
	// ========================================
	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Println("✅ Task queue client ready")

	// ========================================
	// STEP 6: WIRE THE IMAGE DOMAIN
	// ========================================
	c.ImageRepo = imageRepo.NewImageRepository(db.Pool, c.Cache)

	colorizer := deoldify.NewClient(deoldify.Config{
		APIURL:  cfg.Colorizer.APIURL,
		Timeout: cfg.Colorizer.Timeout,
	})

	var archive imageService.ObjectArchive
	if c.Storage != nil {
		archive = c.Storage
	}

	c.ImageService = imageService.NewImageService(
		c.ImageRepo,
		colorizer,
		archive,
		c.AsynqClient,
		cfg.Upload.MaxBytes,
		cfg.Colorizer.Timeout,
	)

	c.ImageHandler = imageHandler.NewHandler(c.ImageService)

	log.Println("✅ DI Container initialized")
	return c, nil
}

// Cleanup releases infrastructure resources in reverse order.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close task queue client: %v", err)
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok && rc != nil {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}
}
