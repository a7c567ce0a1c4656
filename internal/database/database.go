package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edmorua/admin-user-back/internal/config"
	"github.com/edmorua/admin-user-back/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured backend, verifies the connection and
// prepares indexes/tables. The caller owns the returned repository and must
// Close it on shutdown.
func Open(ctx context.Context, cfg *config.Config) (store.Repository, error) {
	var (
		repo store.Repository
		err  error
	)

	switch cfg.DBDriver {
	case config.DriverMongo:
		repo, err = openMongo(ctx, cfg)
	case config.DriverPostgres:
		repo, err = openPostgres(cfg)
	case config.DriverMemory:
		repo = store.NewMemoryRepository()
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	slog.Info("database connected", "driver", cfg.DBDriver, "name", cfg.DBName)
	return repo, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*store.MongoRepository, error) {
	opts := options.Client().
		ApplyURI(cfg.DBHost).
		SetConnectTimeout(cfg.DBTimeout).
		SetServerSelectionTimeout(cfg.DBTimeout).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	return store.NewMongoRepository(client.Database(cfg.DBName)), nil
}

func openPostgres(cfg *config.Config) (*store.GormRepository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return store.NewGormRepository(db), nil
}
