package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/availability"
	deviceUseCase "github.com/amirhossein-jamali/locker-service/internal/domain/usecase/device"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/lifecycle"
	lockerUseCase "github.com/amirhossein-jamali/locker-service/internal/domain/usecase/locker"
	lockerLogUseCase "github.com/amirhossein-jamali/locker-service/internal/domain/usecase/lockerlog"
	paymentUseCase "github.com/amirhossein-jamali/locker-service/internal/domain/usecase/payment"
	userUseCase "github.com/amirhossein-jamali/locker-service/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/audit"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/memory"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/notify"
	timeProvider "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/config"
)

// app holds what main starts and stops
type app struct {
	router  *gin.Engine
	sweeper *lifecycle.Sweeper
	closers []func()
}

// close releases resources in reverse acquisition order
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, appLogger coreport.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	tp := timeProvider.NewRealTimeProvider()
	ids := idgen.NewUUIDGenerator()
	validator := validation.New()

	repos, checker, err := openStore(ctx, cfg, appLogger, tp, a)
	if err != nil {
		return nil, err
	}

	auditWriter, err := openAuditWriter(cfg, repos, appLogger, tp, a)
	if err != nil {
		return nil, err
	}

	notifier, err := openNotifier(ctx, cfg, appLogger, a)
	if err != nil {
		return nil, err
	}

	manager := availability.NewManager(
		repos.Lockers,
		repos.Transactions,
		repos.LockerLogs,
		auditWriter,
		ids,
		tp,
		appLogger,
	).
		WithRetryConfig(availability.RetryConfig{
			MaxAttempts:  cfg.Availability.MaxAttempts,
			BaseBackoff:  time.Duration(cfg.Availability.BaseBackoffMs) * time.Millisecond,
			MaxBackoff:   time.Duration(cfg.Availability.MaxBackoffMs) * time.Millisecond,
			JitterFactor: availability.DefaultRetryConfig().JitterFactor,
		}).
		WithNotifier(notifier).
		WithAuditTimeout(time.Duration(cfg.Audit.WriteTimeoutMs) * time.Millisecond)

	controller := lifecycle.NewController(repos.UnitOfWork, manager, validator, ids, tp, appLogger).
		WithPaymentTimeout(cfg.Lifecycle.PaymentTimeout()).
		WithMaxAttempts(cfg.Lifecycle.MaxAttempts).
		WithDevices(repos.Devices)

	a.sweeper = lifecycle.NewSweeper(controller, appLogger, cfg.Lifecycle.SweepInterval(), cfg.Lifecycle.SweepBatchSize)

	users := userUseCase.NewUserUseCase(repos.Users, validator, ids, tp, appLogger)
	lockers := lockerUseCase.NewLockerUseCase(repos.UnitOfWork, validator, ids, tp, appLogger)
	devices := deviceUseCase.NewDeviceUseCase(repos.Devices, repos.Lockers, validator, ids, tp, appLogger)
	payments := paymentUseCase.NewPaymentUseCase(repos.Payments, repos.Transactions, controller, validator, ids, tp, appLogger)
	logs := lockerLogUseCase.NewLockerLogUseCase(repos.LockerLogs, repos.Lockers, validator, ids, tp, appLogger)

	if err := migration.SeedDefaultAdmin(ctx, users, appLogger, cfg.Admin.ID, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		appLogger.Error("Failed to create default admin", map[string]any{
			"error": err.Error(),
		})
	}

	a.router = gin.New()
	routes.SetupMiddlewares(a.router, appLogger, ids, tp)
	routes.SetupRoutes(a.router, routes.Handlers{
		Users:        handler.NewUserHandler(users, appLogger),
		Lockers:      handler.NewLockerHandler(lockers, manager, appLogger),
		Devices:      handler.NewDeviceHandler(devices, appLogger),
		Transactions: handler.NewTransactionHandler(controller, appLogger),
		Payments:     handler.NewPaymentHandler(payments, appLogger),
		LockerLogs:   handler.NewLockerLogHandler(logs, appLogger),
		Health:       handler.NewHealthHandler(checker, appLogger),
	})

	return a, nil
}

// openStore connects the configured backend and returns its repositories
func openStore(
	ctx context.Context,
	cfg *config.Config,
	appLogger coreport.Logger,
	tp coreport.TimeProvider,
	a *app,
) (persistence.Repositories, handler.HealthChecker, error) {
	if cfg.Database.Driver == database.DriverMemory {
		appLogger.Warn("Using in-memory store; data is lost on restart", nil)
		return memory.NewStore(tp, appLogger).Repositories(), nil, nil
	}

	dbManager := database.NewManager(database.NewConfig(cfg.Database, cfg.Logger.Level), appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return persistence.Repositories{}, nil, err
	}
	a.closers = append(a.closers, func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Warn("Failed to close database", map[string]any{"error": err.Error()})
		}
	})

	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(ctx); err != nil {
			return persistence.Repositories{}, nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return dbManager.Repositories(), dbManager.HealthChecker(), nil
}

// openAuditWriter builds the async writer over the configured sink
func openAuditWriter(
	cfg *config.Config,
	repos persistence.Repositories,
	appLogger coreport.Logger,
	tp coreport.TimeProvider,
	a *app,
) (event.AuditWriter, error) {
	var sink event.AuditWriter = repos.LockerLogs

	if cfg.Audit.Sink == config.AuditSinkRabbitMQ {
		publisher, err := audit.DialRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, tp, appLogger)
		if err != nil {
			return nil, fmt.Errorf("connect audit broker: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := publisher.Close(); err != nil {
				appLogger.Warn("Failed to close audit broker connection", map[string]any{"error": err.Error()})
			}
		})
		sink = publisher
	}

	writer := audit.NewAsyncWriter(sink, audit.AsyncConfig{
		Workers:        cfg.Audit.Workers,
		BufferSize:     cfg.Audit.BufferSize,
		EnqueueTimeout: time.Duration(cfg.Audit.EnqueueTimeoutMs) * time.Millisecond,
		WriteTimeout:   time.Duration(cfg.Audit.WriteTimeoutMs) * time.Millisecond,
	}, appLogger)
	a.closers = append(a.closers, writer.Close)

	appLogger.Info("Audit writer started", map[string]any{
		"sink":    cfg.Audit.Sink,
		"workers": cfg.Audit.Workers,
	})
	return writer, nil
}

// openNotifier connects Redis when change notifications are enabled
func openNotifier(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, a *app) (event.ChangeNotifier, error) {
	if !cfg.Redis.Enabled {
		return notify.NoopNotifier{}, nil
	}

	client, err := notify.NewRedisClient(ctx, notify.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	appLogger.Info("Publishing locker changes to Redis", map[string]any{
		"addr":   cfg.Redis.Addr,
		"prefix": cfg.Redis.ChannelPrefix,
	})
	return notify.NewRedisNotifier(client, cfg.Redis.ChannelPrefix, appLogger), nil
}
