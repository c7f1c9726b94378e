package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dsadapter "github.com/couchcryptid/nexrain-service/internal/adapter/datastore"
	httpadapter "github.com/couchcryptid/nexrain-service/internal/adapter/http"
	redisadapter "github.com/couchcryptid/nexrain-service/internal/adapter/redis"
	"github.com/couchcryptid/nexrain-service/internal/config"
	"github.com/couchcryptid/nexrain-service/internal/nexrain"
	"github.com/couchcryptid/nexrain-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := dsadapter.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create datastore client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	store := dsadapter.NewStore(client, cfg.DatastoreNamespace, logger, metrics)
	logger.Info("datastore client ready",
		"project", cfg.DatastoreProjectID,
		"namespace", cfg.DatastoreNamespace,
		"database", cfg.DatastoreDatabaseID,
	)

	var queries httpadapter.Queries = nexrain.New(store, logger, metrics)

	// Optional points cache (feature-flagged via REDIS_ENABLED / REDIS_ADDR).
	if cfg.RedisEnabled {
		rdb := redisadapter.NewClient(cfg)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis ping failed, cache will degrade to direct queries", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()

		queries = redisadapter.NewCachedService(queries, rdb, cfg.PointsCacheTTL, logger, metrics)
		metrics.PointsCacheEnabled.Set(1)
		logger.Info("points cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.PointsCacheTTL)
	} else {
		logger.Info("points cache disabled")
	}

	router := httpadapter.NewRouter(queries, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, router, store, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
