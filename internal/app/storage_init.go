package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/dao"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/domain"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/health"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/restaurant-orders/internal/storage/postgres"
)

// runtimeDependencies: репозитории выбранного хранилища и функция их освобождения.
type runtimeDependencies struct {
	customers      dao.CustomerRepository
	items          dao.ItemRepository
	orders         dao.OrderRepository
	outboxRepo     domain.OutboxRepository
	storageChecker health.Checker
	closeFn        func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		store := memory.NewStore()
		logger.Info("using in-memory storage")
		return runtimeDependencies{
			customers:      store.Customers(),
			items:          store.Items(),
			orders:         store.Orders(),
			outboxRepo:     memory.NewOutboxRepository(),
			storageChecker: health.NewFuncChecker("storage", func(context.Context) error { return nil }),
			closeFn:        func() error { return nil },
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return runtimeDependencies{}, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}
		logger.Info("using postgres storage")
		return runtimeDependencies{
			customers:      postgres.NewCustomerRepository(store),
			items:          postgres.NewItemRepository(store),
			orders:         postgres.NewOrderRepository(store),
			outboxRepo:     postgres.NewOutboxRepository(store),
			storageChecker: health.NewFuncChecker("storage", store.Ping),
			closeFn:        store.Close,
		}, nil

	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
