package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"grunnlag/internal/grunnlag/cache"
	"grunnlag/internal/grunnlag/metrics"
	"grunnlag/internal/grunnlag/outbox"
	"grunnlag/internal/grunnlag/service"
	"grunnlag/internal/grunnlag/store"
	"grunnlag/internal/platform/config"
	"grunnlag/internal/platform/httpserver"
	"grunnlag/internal/platform/kafka"
	"grunnlag/internal/platform/logger"
	"grunnlag/internal/platform/postgres"
	platformredis "grunnlag/internal/platform/redis"
	"grunnlag/pkg/platform/circuit"
)

// grunnlagStore is what both store implementations provide.
type grunnlagStore interface {
	service.Store
	outbox.Source
}

// app owns the process-wide resources shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	db      *sql.DB
	store   grunnlagStore
	redis   *platformredis.Client
	kafka   *kgo.Client
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		logger:  logger.New(cfg.Log),
		metrics: metrics.New(),
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		a.logger.WarnContext(ctx, "using in-memory store; data is lost on exit")
		a.store = store.NewInMemoryStore()
	default:
		a.db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.store = store.NewPostgresStore(a.db, store.WithTxTimeout(cfg.Database.TxTimeout))
	}
	return a, nil
}

// connectRedis is optional; a missing URL keeps the in-process cache.
func (a *app) connectRedis(ctx context.Context) error {
	client, err := platformredis.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = client
	return nil
}

func (a *app) connectKafka() error {
	if !a.cfg.KafkaEnabled() {
		return nil
	}
	client, err := kafka.NewProducer(a.cfg.Kafka)
	if err != nil {
		return err
	}
	a.kafka = client
	return nil
}

func (a *app) snapshotCache() service.SnapshotCache {
	if a.redis != nil {
		return cache.NewRedisCache(a.redis.Client, a.cfg.Cache.TTL)
	}
	return cache.NewInMemoryCache(a.cfg.Cache.TTL, a.cfg.Cache.Capacity)
}

func (a *app) service() *service.Service {
	return service.New(a.store,
		service.WithLogger(a.logger),
		service.WithMetrics(a.metrics),
		service.WithCache(a.snapshotCache()),
	)
}

func (a *app) relay() (*outbox.Relay, error) {
	if a.kafka == nil {
		return nil, errors.New("outbox relay needs kafka.brokers")
	}
	breaker := circuit.New("grunnlag-outbox", circuit.WithFailureThreshold(a.cfg.Outbox.FailureThreshold))
	return outbox.NewRelay(a.store, outbox.NewKafkaPublisher(a.kafka, a.cfg.Kafka.Topic),
		outbox.WithLogger(a.logger),
		outbox.WithMetrics(a.metrics),
		outbox.WithPollInterval(a.cfg.Outbox.PollInterval),
		outbox.WithBatchSize(a.cfg.Outbox.BatchSize),
		outbox.WithBreaker(breaker, a.cfg.Outbox.ProbeInterval),
	), nil
}

func (a *app) healthChecks() map[string]httpserver.HealthCheck {
	checks := map[string]httpserver.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.kafka != nil {
		checks["kafka"] = a.kafka.Ping
	}
	return checks
}

func (a *app) migrate(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	applied, err := store.Migrate(ctx, a.db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, name := range applied {
		a.logger.InfoContext(ctx, "migration applied", "migration", name)
	}
	return nil
}

func (a *app) Close() {
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}
