// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"

	"visualverse/internal/cache"
	"visualverse/internal/config"
	"visualverse/internal/database"
	"visualverse/internal/events"
	"visualverse/internal/repositories"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// ServiceCollection holds all services with dependency injection
type ServiceCollection struct {
	// Core services
	BadgeService     BadgeService     `json:"-"`
	UserService      UserService      `json:"-"`
	AuthService      AuthService      `json:"-"`
	DoodleService    DoodleService    `json:"-"`
	ChallengeService ChallengeService `json:"-"`
	FileService      FileService      `json:"-"`

	// Infrastructure
	Repositories *repositories.Collection `json:"-"`
	Cache        cache.Cache              `json:"-"`
	EventBus     events.EventBus          `json:"-"`
	Logger       *zap.Logger              `json:"-"`
	Config       *config.Config           `json:"-"`
	DBManager    *database.Manager        `json:"-"`
	Cloudinary   *cloudinary.Cloudinary   `json:"-"`
}

// NewServiceCollection wires the full service graph in dependency order
func NewServiceCollection(dbManager *database.Manager, cfg *config.Config, logger *zap.Logger) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
	}

	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	sc.Repositories = repositories.NewCollection(dbManager, logger)
	sc.initializeServices()

	logger.Info("Service collection initialized")
	return sc, nil
}

// initializeInfrastructure sets up cache, event bus and Cloudinary
func (sc *ServiceCollection) initializeInfrastructure() error {
	cacheInstance, err := cache.New(&sc.Config.Cache, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	sc.Cache = cacheInstance
	sc.EventBus = events.NewMemoryBus(sc.Logger)

	if sc.Config.Cloudinary.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			sc.Config.Cloudinary.CloudName,
			sc.Config.Cloudinary.APIKey,
			sc.Config.Cloudinary.APISecret,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		sc.Cloudinary = cld
	}
	return nil
}

// initializeServices builds service implementations in dependency order
func (sc *ServiceCollection) initializeServices() {
	repos := sc.Repositories

	sc.BadgeService = NewBadgeService(
		repos.Badges, repos.UserBadges, repos.Activity, repos.Users,
		sc.Cache, sc.EventBus, sc.Logger,
	)
	sc.UserService = NewUserService(repos.Users, sc.Logger)
	sc.AuthService = NewAuthService(repos.Users, sc.Config.Auth, sc.EventBus, sc.Logger)
	sc.ChallengeService = NewChallengeService(repos.Challenges, sc.Logger)
	if sc.Cloudinary != nil {
		sc.FileService = NewFileService(sc.Cloudinary, sc.Config.Cloudinary, sc.Logger)
	}
	sc.DoodleService = NewDoodleService(
		repos.Doodles, repos.Challenges, repos.Users,
		sc.BadgeService, sc.UserService, sc.FileService, sc.EventBus, sc.Logger,
	)
}

// Health verifies the collection's infrastructure dependencies
func (sc *ServiceCollection) Health(ctx context.Context) error {
	if err := sc.DBManager.Health(ctx); err != nil {
		return fmt.Errorf("database unhealthy: %w", err)
	}
	if err := sc.Cache.Health(ctx); err != nil {
		return fmt.Errorf("cache unhealthy: %w", err)
	}
	return nil
}

// Shutdown releases infrastructure resources
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")
	sc.EventBus.Close()
	if err := sc.Cache.Close(); err != nil {
		sc.Logger.Warn("Failed to close cache", zap.Error(err))
	}
	return nil
}
