package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	mongoInfra "github.com/fastygo/taskboard/internal/infrastructure/mongo"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	"github.com/fastygo/taskboard/internal/lifecycle"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	mongoRepo "github.com/fastygo/taskboard/repository/mongo"
	pgRepo "github.com/fastygo/taskboard/repository/postgres"
)

type stores struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	ping  monitor.CheckFunc
}

// openStores connects the driver selected by STORE_DRIVER and registers its
// shutdown hook.
func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongoInfra.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return stores{}, fmt.Errorf("mongo connection failed: %w", err)
		}
		manager.Register("mongo", client.Disconnect)
		if err := mongoRepo.EnsureIndexes(ctx, db); err != nil {
			return stores{}, fmt.Errorf("mongo indexes: %w", err)
		}
		return stores{
			users: mongoRepo.NewUserRepository(db),
			tasks: mongoRepo.NewTaskRepository(db),
			ping: func(ctx context.Context) error {
				return mongoInfra.Ping(ctx, client)
			},
		}, nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return stores{}, fmt.Errorf("migrations failed: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return stores{}, fmt.Errorf("postgres connection failed: %w", err)
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		return stores{
			users: pgRepo.NewUserRepository(pool),
			tasks: pgRepo.NewTaskRepository(pool),
			ping:  pgInfra.Ping(pool),
		}, nil

	case config.DriverBolt:
		db, err := boltInfra.Open(cfg.Bolt.Path)
		if err != nil {
			return stores{}, fmt.Errorf("failed to open bolt store: %w", err)
		}
		manager.Register("bolt", func(context.Context) error {
			return db.Close()
		})
		logger.Info("opened bolt store", zap.String("path", cfg.Bolt.Path))
		return stores{
			users: boltRepo.NewUserRepository(db),
			tasks: boltRepo.NewTaskRepository(db),
			ping: func(ctx context.Context) error {
				return boltInfra.Ping(ctx, db)
			},
		}, nil
	}
	return stores{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
