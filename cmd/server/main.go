package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/config"
	"github.com/af-corp/media-delivery/internal/delivery"
	"github.com/af-corp/media-delivery/internal/ratelimit"
	"github.com/af-corp/media-delivery/internal/render"
	"github.com/af-corp/media-delivery/internal/server"
	"github.com/af-corp/media-delivery/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load configuration
	loader := config.NewLoader(*configDir, bootLogger)
	if err := loader.Load(); err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	logger := newLogger(cfg.Telemetry)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	metrics := telemetry.NewMetrics()

	source, closeSource, err := openSource(cfg, logger)
	if err != nil {
		logger.Error("failed to open asset source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	rdb := connectRedis(cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}
	store := asset.NewCachedStore(source, rdb, cfg.Redis.CacheTTL, metrics)

	buildProvider := func() delivery.URLProvider {
		return delivery.Select(loader.Cloudinary(), delivery.Options{
			Resolver:    store,
			FallbackURL: loader.Config().Fallback.BaseURL,
			Logger:      logger,
			Metrics:     metrics,
		})
	}
	providers := delivery.NewSwitch(buildProvider())
	loader.OnReload(func() {
		p := buildProvider()
		providers.Store(p)
		logger.Info("delivery provider reloaded", "provider", p.Name())
	})
	logger.Info("delivery provider selected", "provider", providers.Load().Name())

	renderer := render.NewRenderer(store, providers.Load, logger, metrics)
	var sourceState server.SourceState
	if guarded, ok := source.(*asset.GuardedSource); ok {
		sourceState = guarded
	}
	handler := server.NewHandler(renderer, logger, version, sourceState)

	limiter := ratelimit.Middleware(ratelimit.NewLimiter(rdb), cfg.Server.RateLimitRPM, logger, metrics)

	if cfg.Telemetry.MetricsPort > 0 {
		go serveMetrics(cfg.Telemetry.MetricsPort, logger)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(handler, logger, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("media delivery starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("media delivery stopped")
}

func newLogger(cfg config.TelemetryConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// openSource connects to PostgreSQL when a database is configured and falls
// back to the YAML manifest otherwise.
func openSource(cfg *config.Config, logger *slog.Logger) (asset.Source, func(), error) {
	if !cfg.Database.Enabled() {
		src, err := asset.LoadManifest(cfg.Assets.ManifestPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("asset manifest loaded", "path", cfg.Assets.ManifestPath, "assets", src.Len())
		return src, func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("database not reachable (asset lookups will fail until it is)", "error", err)
	} else {
		logger.Info("database connected")
	}
	return asset.NewGuardedSource(asset.NewPostgresSource(pool), 5, 30*time.Second), pool.Close, nil
}

func connectRedis(cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if len(cfg.Addresses) == 0 || cfg.Addresses[0] == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addresses[0],
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis not reachable (asset cache disabled)", "error", err)
		rdb.Close()
		return nil
	}
	logger.Info("redis connected")
	return rdb
}

func serveMetrics(port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
