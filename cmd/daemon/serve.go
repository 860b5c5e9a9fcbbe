package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/CaoDuyThanh/drtrace/internal/api"
	"github.com/CaoDuyThanh/drtrace/internal/cache"
	"github.com/CaoDuyThanh/drtrace/internal/config"
	"github.com/CaoDuyThanh/drtrace/internal/logstore"
	"github.com/CaoDuyThanh/drtrace/internal/retention"
	"github.com/CaoDuyThanh/drtrace/pkg/logger"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the DrTrace daemon HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	log.Info("starting drtrace-daemon", "version", serviceVersion, "storage_backend", cfg.Storage.Backend)

	ctx := context.Background()

	var pgPool *pgxpool.Pool
	if cfg.Storage.Backend == config.StorageBackendPostgres {
		pgPool, err = pgxpool.New(ctx, cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pgPool.Close()

		if err := logstore.MigratePostgres(cfg.DatabaseURL()); err != nil {
			log.Warn("postgres migrations failed, continuing (manual intervention may be required)", "error", err)
		}
	}

	reg := metrics.Default()

	store, err := logstore.New(ctx, cfg, pgPool, log, reg)
	if err != nil {
		log.Error("failed to initialize log store, falling back to in-memory", "error", err)
		store = logstore.NewFallback(log, reg)
	}
	defer store.Close()

	l1 := cache.NewL1(cfg.Cache.L1Size, cfg.Cache.TTL)
	var l2 *cache.L2
	if cfg.Redis.Addr != "" {
		l2, err = cache.NewL2(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, log)
		if err != nil {
			log.Warn("redis L2 cache unavailable, running L1-only", "error", err)
			l2 = nil
		}
	}
	cacheMgr := cache.NewManager(l1, l2, log, reg)

	router := api.NewRouter(api.RouterConfig{
		Store:             store,
		Cache:             cacheMgr,
		Config:            cfg,
		Metrics:           reg,
		Logger:            log,
		Version:           serviceVersion,
		EnableRateLimit:   cfg.RateLimit.Enabled,
		EnableCompression: true,
		EnableCORS:        true,
		EnableMetrics:     true,
	})

	retentionWorker := retention.NewWorker(store, reg, log, cfg.Retention.Days, cfg.Retention.Interval)
	retentionWorker.Start(ctx)
	defer retentionWorker.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}

	log.Info("server exited cleanly")
	return nil
}
