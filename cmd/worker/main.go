package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/audit"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Service: "roombooking-worker"})

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal().Msg("kafka.brokers is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, log)
	defer consumer.Close()

	var recorderOpts []audit.RecorderOption
	if cfg.Storage.Driver == config.StorageDriverPostgres {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migrate schema")
			}
		}
		recorderOpts = append(recorderOpts, audit.WithStore(repository.NewAuditLog(pool)))
	} else {
		log.Warn().Msg("in-memory storage: booking events are logged but not persisted")
	}

	recorder := audit.NewRecorder(log, recorderOpts...)
	handler := kafka.BookingEventHandler(log, audit.WithRetry(cfg.Worker.MaxRetries, 500*time.Millisecond, recorder.Record))

	log.Info().Str("topic", cfg.Kafka.BookingEventsTopic).Str("group", cfg.Kafka.GroupID).Msg("audit worker started")
	if err := consumer.Consume(ctx, handler); err != nil {
		log.Error().Err(err).Msg("consumer stopped")
		return
	}
	log.Info().Msg("audit worker stopped")
}
