package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/audit"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	timeProvider "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/config"
)

// The consumer moves locker log entries published by the API into Postgres.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(coreport.ParseLogLevel(cfg.Logger.Level))

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Audit consumer stopped", map[string]any{
			"error": err.Error(),
		})
		_ = appLogger.Flush()
		os.Exit(1)
	}
	_ = appLogger.Flush()
}

func run(cfg *config.Config, appLogger coreport.Logger) error {
	if cfg.Database.Driver != database.DriverPostgres {
		return errors.New("audit consumer requires the postgres driver")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := timeProvider.NewRealTimeProvider()
	dbManager := database.NewManager(database.NewConfig(cfg.Database, cfg.Logger.Level), appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = dbManager.Close() }()

	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(ctx); err != nil {
			return err
		}
	}

	appLogger.Info("Starting audit consumer", map[string]any{
		"queue":    cfg.RabbitMQ.Queue,
		"prefetch": cfg.RabbitMQ.Prefetch,
	})

	consumer := audit.NewConsumer(dbManager.Repositories().LockerLogs, appLogger)
	err := audit.Supervise(ctx, audit.DefaultReconnectPolicy(), tp, appLogger, func(ctx context.Context, up func()) error {
		return consume(ctx, cfg.RabbitMQ, consumer, up)
	})
	if err != nil {
		return err
	}

	appLogger.Info("Audit consumer exited gracefully", nil)
	return nil
}

// consume runs one broker connection until it drops or ctx is done
func consume(ctx context.Context, cfg config.RabbitMQConfig, consumer *audit.Consumer, up func()) error {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	err = consumer.Run(ctx, ch, cfg.Queue, cfg.Prefetch, up)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
