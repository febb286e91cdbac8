// cmd/fulfillment-worker/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dining-concierge/internal/api"
	awsclients "dining-concierge/internal/common/aws"
	"dining-concierge/internal/common/camunda"
	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/notify"
	"dining-concierge/internal/common/observability"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/records"
	"dining-concierge/internal/common/search"
	"dining-concierge/internal/common/validation"

	suggestions "dining-concierge/internal/workers/fulfillment/dining-suggestions"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateFulfillment()
	}
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": "fulfillment-worker",
		"env":     cfg.App.Environment,
	})

	zapLog.Info("Starting fulfillment worker...",
		zap.String("trigger", cfg.Fulfillment.Trigger),
		zap.String("queue", cfg.Queue.Driver),
		zap.String("records", cfg.Records.Driver),
		zap.String("notify", cfg.Notify.Provider),
	)

	obs, err := observability.New("fulfillment-worker", cfg.App.Version)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, stage metrics disabled", zap.Error(err))
	}
	if cfg.Tracing.JaegerEndpoint != "" {
		if err := obs.EnableJaeger(cfg.Tracing.JaegerEndpoint); err != nil {
			zapLog.Warn("jaeger exporter unavailable, spans stay local", zap.Error(err))
		}
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	checks := map[string]api.Check{}

	clients, err := awsclients.NewClients(ctx, cfg.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws config failed", zap.Error(err))
	}

	// --- Init Elasticsearch with retry ---
	var es *database.ElasticsearchClient
	err = database.RetryWithBackoff(func() error {
		var err error
		if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	checks["elasticsearch"] = es.Ping
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry (dev queue and/or record cache) ---
	var rdb redis.UniversalClient
	if cfg.Queue.Driver == config.QueueDriverRedis || cfg.Records.Cache.Enabled {
		var rc *database.RedisClient
		err = database.RetryWithBackoff(func() error {
			var err error
			if rc, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		rdb = rc.Client
		checks["redis"] = rc.Ping
		zapLog.Info("Redis connected successfully")
	}

	// --- Init PostgreSQL with retry (postgres record store only) ---
	var db *sql.DB
	if cfg.Records.Driver == config.RecordsDriverPostgres {
		var pg *database.PostgresClient
		err = database.RetryWithBackoff(func() error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		db = pg.DB
		checks["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	requests, err := queue.New(cfg.Queue, clients.SQS, rdb)
	if err != nil {
		zapLog.Fatal("request queue init failed", zap.Error(err))
	}

	var cache redis.Cmdable
	if rdb != nil {
		cache = rdb
	}
	store, err := records.New(cfg.Records, clients.DynamoDB, db, cache, log)
	if err != nil {
		zapLog.Fatal("record store init failed", zap.Error(err))
	}

	notifier, err := notify.New(cfg.Notify, clients.SES, clients.SNS)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	validator, err := validation.NewCanonicalRequestValidator()
	if err != nil {
		zapLog.Fatal("request schema failed to compile", zap.Error(err))
	}

	workerCfg := suggestions.LoadConfig(cfg)
	worker := suggestions.NewWorker(workerCfg, suggestions.Dependencies{
		Queue: requests,
		Index: search.NewElasticsearchIndex(es.Client, search.Options{
			Index:        cfg.Search.Index,
			CuisineField: cfg.Search.CuisineField,
			IDField:      cfg.Search.IDField,
		}),
		Records:       store,
		Notifier:      notifier,
		Validator:     validator,
		Observability: obs,
		Logger:        log,
	})

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	runnerDone := make(chan struct{})

	var jobWorker *camunda.JobWorker
	var zeebe *camunda.Client

	switch cfg.Fulfillment.Trigger {
	case config.TriggerZeebe:
		// --- Init Zeebe Client with retry ---
		err = database.RetryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		checks["zeebe"] = zeebe.HealthCheck
		jobWorker = camunda.NewJobWorker(zeebe.Zeebe(), camunda.WorkerOptions{
			TaskType:       cfg.Camunda.TaskType,
			MaxJobsActive:  cfg.Camunda.MaxJobsActive,
			Timeout:        config.GetDuration(cfg.Camunda.Timeout),
			RequestTimeout: config.GetDuration(cfg.Camunda.RequestTimeout),
		}, worker.JobFunc(), log)
		close(runnerDone)
	default:
		runner := suggestions.NewRunner(worker, workerCfg, log)
		go func() {
			defer close(runnerDone)
			if err := runner.Run(runCtx); err != nil {
				zapLog.Error("fulfillment runner stopped with error", zap.Error(err))
			}
		}()
	}

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Fulfillment.HealthPort),
		Handler: api.NewRouter(api.RouterOptions{Checks: checks, Logger: log}),
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping fulfillment...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stop()
	if jobWorker != nil {
		jobWorker.Close()
	}
	select {
	case <-runnerDone:
	case <-shutdownCtx.Done():
		zapLog.Warn("fulfillment runner did not stop in time")
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down health server", zap.Error(err))
	}

	zapLog.Info("Fulfillment worker stopped gracefully")
}
