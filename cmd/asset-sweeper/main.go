package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/farmlog-app/farmlog-backend/internal/assets"
	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/db"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
	"github.com/farmlog-app/farmlog-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "asset-sweeper"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "asset-sweeper",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	store, err := assets.NewStore(cfg.Assets.Dir, cfg.Assets.MaxUploadBytes())
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload directory", err)
		os.Exit(1)
	}

	sweepMetrics := metrics.NewSweepMetrics(prometheus.DefaultRegisterer)
	sweeper := assets.NewSweeper(store, dbClient.DB(), logg, sweepMetrics, cfg.Assets.SweepGraceTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"dir":      cfg.Assets.Dir,
		"interval": cfg.Assets.SweepInterval.String(),
	})
	logg.Info(ctx, "starting asset sweeper")

	if err := run(ctx, sweeper, cfg.Assets.SweepInterval, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "asset sweeper stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "asset sweeper shutting down gracefully")
}

func run(ctx context.Context, sweeper *assets.Sweeper, interval time.Duration, logg *logger.Logger) error {
	if interval <= 0 {
		_, err := sweeper.Run(ctx)
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		removed, err := sweeper.Run(ctx)
		if err != nil {
			logg.Error(ctx, "sweep failed", err)
		} else {
			logg.Info(logg.WithField(ctx, "removed", removed), "sweep completed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
