package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodReview/internal/config"
	"FoodReview/internal/products"
	"FoodReview/pkg/kit"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := kit.NewLogger(cfg.ServiceName, cfg.Logging.Level)
	defer func() { _ = log.Sync() }()

	log.Info("application startup",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment),
	)

	ctx := context.Background()

	var db products.Querier
	if cfg.Database.Kind == config.SourcePostgres {
		pool, err := connectPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			log.Fatal("connect postgres failed", zap.Error(err))
		}
		defer pool.Close()
		db = pool
	}

	src, err := products.NewSource(products.Descriptor{
		Kind:     cfg.Database.Kind,
		Filename: cfg.Database.Filename,
		Table:    cfg.Database.Table,
		Version:  cfg.Database.Version,
	}, db)
	if err != nil {
		log.Fatal("init review source failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	repo := products.NewRepository()
	reloader := products.NewReloader(repo, src, log, products.NewReloadMetrics(reg))

	if err := reloader.Load(ctx); err != nil {
		log.Fatal("initial review load failed", zap.Error(err))
	}

	var limiterOpts []kit.RateLimitOption
	if cfg.Reload.TrustForwardedFor {
		limiterOpts = append(limiterOpts, kit.TrustForwardedFor())
	}

	s := &products.Server{
		Repo:     repo,
		Reloader: reloader,
		Log:      log,
		ReloadLimiter: kit.NewIPRateLimiter(
			cfg.Reload.RateLimit,
			time.Duration(cfg.Reload.WindowSeconds)*time.Second,
			limiterOpts...,
		),
	}

	h := products.NewHandler(s, products.HTTPDeps{
		Log:            log,
		Service:        cfg.ServiceName,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	err = kit.RunHTTPServer(ctx, cfg.API.Addr, h, log)

	reloader.Wait()
	reloader.Clear()
	log.Info("application shutdown")

	if err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func connectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
