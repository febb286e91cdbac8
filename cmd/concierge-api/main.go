// cmd/concierge-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dining-concierge/internal/api"
	awsclients "dining-concierge/internal/common/aws"
	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/queue"

	chatrelay "dining-concierge/internal/workers/conversation/chat-relay"
	dialoghook "dining-concierge/internal/workers/conversation/dialog-hook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": "concierge-api",
		"env":     cfg.App.Environment,
	})

	zapLog.Info("Starting concierge API...", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	clients, err := awsclients.NewClients(ctx, cfg.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws config failed", zap.Error(err))
	}

	checks := map[string]api.Check{}

	// --- Init Redis with retry (dev queue only) ---
	var rdb redis.UniversalClient
	if cfg.Queue.Driver == config.QueueDriverRedis {
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

	requests, err := queue.New(cfg.Queue, clients.SQS, rdb)
	if err != nil {
		zapLog.Fatal("request queue init failed", zap.Error(err))
	}

	hookCfg := dialoghook.LoadConfig(cfg)
	controller := dialoghook.NewController(hookCfg, dialoghook.NewValidator(hookCfg, time.Now), requests, log)

	router := api.NewRouter(api.RouterOptions{
		DialogHook: dialoghook.NewHandler(controller, log),
		ChatRelay:  chatrelay.NewHandler(chatrelay.LoadConfig(cfg), clients.Lex, log),
		Checks:     checks,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Concierge API stopped gracefully")
}
