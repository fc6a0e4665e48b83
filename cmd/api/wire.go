package main

import (
	"context"
	"fmt"

	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/events"
	"meal-planner/internal/infrastructure/memstore"
	"meal-planner/internal/infrastructure/postgres"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// storage 儲存層的各個介面實作
type storage struct {
	meals   shopping.MealRepository
	lists   shopping.ListRepository
	catalog shopping.IngredientCatalog
	members shopping.MembershipChecker
	tx      shopping.TxManager
	checks  map[string]health.Pinger
	close   func()
}

// buildStorage 依 storage.driver 建立儲存層
func buildStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		common.LogInfo("PostgreSQL storage ready",
			zap.Int32("max_conns", cfg.Database.MaxConns),
			zap.Bool("migrated", cfg.Database.MigrateOnStart),
		)
		return &storage{
			meals:   postgres.NewMealRepo(pool),
			lists:   postgres.NewListRepo(pool),
			catalog: postgres.NewIngredientRepo(pool),
			members: postgres.NewMemberRepo(pool),
			tx:      postgres.NewTxManager(pool),
			checks:  map[string]health.Pinger{"storage": pool},
			close:   pool.Close,
		}, nil

	case config.StorageMemory:
		store := memstore.New()
		if cfg.Storage.SeedFile != "" {
			if err := store.LoadSeed(cfg.Storage.SeedFile); err != nil {
				return nil, err
			}
			common.LogInfo("Memory storage seeded", zap.String("file", cfg.Storage.SeedFile))
		}
		common.LogWarn("Using in-memory storage, data is lost on restart")
		return &storage{
			meals:   store,
			lists:   store,
			catalog: store,
			members: store,
			tx:      store,
			checks:  map[string]health.Pinger{"storage": store},
			close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// buildPublisher 依 events.drivers 建立事件發布器，需要連線的依賴加入 checks
func buildPublisher(ctx context.Context, cfg *config.Config, checks map[string]health.Pinger) (shopping.Publisher, func(), error) {
	var publishers events.Multi
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, driver := range cfg.Events.Drivers {
		switch driver {
		case config.EventsLog:
			publishers = append(publishers, events.LogPublisher{})
		case config.EventsRedis:
			client, err := events.NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			closers = append(closers, func() { _ = client.Close() })
			checks["redis"] = health.PingFunc(func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			})
			publishers = append(publishers, events.NewRedisPublisher(client, cfg.Events.ChannelPrefix))
		case config.EventsWebhook:
			publishers = append(publishers, events.NewWebhookPublisher(cfg.Events.Webhook))
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown events driver %q", driver)
		}
	}

	common.LogInfo("Event publishers ready", zap.Strings("drivers", cfg.Events.Drivers))
	return publishers, closeAll, nil
}
