package api

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	opsserver "github.com/Apurer/reseller-ops-api/go"

	auditmemory "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/memory"
	auditobs "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/observability"
	auditpostgres "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/persistence/postgres"
	auditapp "github.com/Apurer/reseller-ops-api/internal/domains/audit/application"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	inventorymemory "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/memory"
	inventorymessaging "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/messaging"
	inventoryobs "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/observability"
	inventorypostgres "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/persistence/postgres"
	redislockadapter "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/redislock"
	inventoryapp "github.com/Apurer/reseller-ops-api/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	ordersmemory "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/memory"
	ordersmessaging "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/messaging"
	ordersobs "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/reseller-ops-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	quotesmemory "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/memory"
	quotesobs "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/observability"
	quotesredis "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/redis"
	quotesstock "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/stock"
	quotesapp "github.com/Apurer/reseller-ops-api/internal/domains/quotes/application"
	quotesports "github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
	platformkafka "github.com/Apurer/reseller-ops-api/internal/platform/kafka"
	"github.com/Apurer/reseller-ops-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/reseller-ops-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/reseller-ops-api/internal/platform/postgres"
	platformredis "github.com/Apurer/reseller-ops-api/internal/platform/redis"
)

// Stack holds the decorated services of every bounded context plus the probes of the backing
// services they run on.
type Stack struct {
	Audit     auditports.Service
	Inventory inventoryports.Service
	Orders    ordersports.Service
	Quotes    quotesports.Service
	Health    map[string]opsserver.HealthCheck
	// Durable reports whether state lives in Postgres and is therefore shared between processes.
	Durable bool

	cleanups []func()
}

// BuildStack connects the configured backing services, falling back to in-memory adapters for
// anything missing, and wires the application services on top.
func BuildStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Stack, error) {
	logger := instruments.Logger
	stack := &Stack{Health: map[string]opsserver.HealthCheck{}}

	db, closeDB := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	stack.cleanups = append(stack.cleanups, closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			stack.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		stack.Durable = true
		stack.Health["postgres"] = postgresCheck(db)
	}

	rdb, closeRedis := platformredis.ConnectOptional(ctx, cfg.RedisAddr, logger)
	stack.cleanups = append(stack.cleanups, closeRedis)
	if rdb != nil {
		stack.Health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	events := platformkafka.NewOptional(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, logger)
	if events != nil {
		stack.cleanups = append(stack.cleanups, func() {
			if err := events.Close(); err != nil {
				logger.Warn("failed to flush kafka publisher", slog.String("error", err.Error()))
			}
		})
	}

	stack.Audit = auditobs.New(
		auditapp.NewService(auditRepository(db)),
		auditobs.WithLogger(logger),
		auditobs.WithTracer(instruments.Tracer("internal.audit.application")),
		auditobs.WithMeter(instruments.Meter("internal.audit.application")),
	)

	inventoryRepo, idempotency := inventoryStores(db)
	locker := productLocker(rdb, logger)
	stack.Inventory = inventoryobs.New(
		inventoryapp.NewService(inventoryRepo, stack.Audit,
			inventoryapp.WithLocker(locker),
			inventoryapp.WithIdempotencyStore(idempotency),
			inventoryapp.WithPublisher(inventoryPublisher(events)),
			inventoryapp.WithLogger(logger),
		),
		inventoryobs.WithLogger(logger),
		inventoryobs.WithTracer(instruments.Tracer("internal.inventory.application")),
		inventoryobs.WithMeter(instruments.Meter("internal.inventory.application")),
	)

	stack.Orders = ordersobs.New(
		ordersapp.NewService(orderRepository(db), stack.Audit,
			ordersapp.WithThreshold(cfg.SPEIValidationThreshold),
			ordersapp.WithPublisher(ordersPublisher(events)),
			ordersapp.WithLogger(logger),
		),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	stack.Quotes = quotesobs.New(
		quotesapp.NewService(quotesstock.NewCatalog(quotesmemory.NewDemoCatalog(), stack.Inventory), quoteSessions(rdb, cfg), stack.Audit,
			quotesapp.WithLocker(locker),
			quotesapp.WithLogger(logger),
		),
		quotesobs.WithLogger(logger),
		quotesobs.WithTracer(instruments.Tracer("internal.quotes.application")),
		quotesobs.WithMeter(instruments.Meter("internal.quotes.application")),
	)

	if cfg.SeedDemoData {
		if err := ordersmemory.SeedDemo(ctx, stack.Orders); err != nil {
			stack.Close()
			return nil, fmt.Errorf("seed demo orders: %w", err)
		}
	}
	return stack, nil
}

// Close releases backing connections in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

func postgresCheck(db *gorm.DB) opsserver.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func auditRepository(db *gorm.DB) auditports.Repository {
	if db == nil {
		return auditmemory.NewRepository()
	}
	return auditpostgres.NewRepository(db)
}

func inventoryStores(db *gorm.DB) (inventoryports.Repository, inventoryports.IdempotencyStore) {
	if db == nil {
		return inventorymemory.NewRepository(), inventorymemory.NewIdempotencyStore()
	}
	return inventorypostgres.NewRepository(db), inventorypostgres.NewIdempotencyStore(db)
}

func orderRepository(db *gorm.DB) ordersports.Repository {
	if db == nil {
		return ordersmemory.NewRepository()
	}
	return orderspostgres.NewRepository(db)
}

func productLocker(rdb *goredis.Client, logger *slog.Logger) inventoryports.ProductLocker {
	if rdb == nil {
		return inventorymemory.NewProductLocker()
	}
	return redislockadapter.NewProductLocker(rdb, redislockadapter.WithLogger(logger))
}

func quoteSessions(rdb *goredis.Client, cfg Config) quotesports.SessionStore {
	if rdb == nil {
		return quotesmemory.NewSessionStore(cfg.QuoteSessionTTL)
	}
	return quotesredis.NewSessionStore(rdb, cfg.QuoteSessionTTL)
}

func inventoryPublisher(events *platformkafka.Publisher) inventoryports.EventPublisher {
	if events == nil {
		return inventorymessaging.NoopPublisher{}
	}
	return inventorymessaging.NewKafkaPublisher(events)
}

func ordersPublisher(events *platformkafka.Publisher) ordersports.EventPublisher {
	if events == nil {
		return ordersmessaging.NoopPublisher{}
	}
	return ordersmessaging.NewKafkaPublisher(events)
}
