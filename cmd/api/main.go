package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/farmlog-app/farmlog-backend/api/routes"
	"github.com/farmlog-app/farmlog-backend/internal/accounts"
	"github.com/farmlog-app/farmlog-backend/internal/assets"
	"github.com/farmlog-app/farmlog-backend/internal/croplogs"
	"github.com/farmlog-app/farmlog-backend/internal/farms"
	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/db"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
	"github.com/farmlog-app/farmlog-backend/pkg/migrate"
	"github.com/farmlog-app/farmlog-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	assetStore, err := assets.NewStore(cfg.Assets.Dir, cfg.Assets.MaxUploadBytes())
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload directory", err)
		os.Exit(1)
	}

	accountService, err := accounts.NewService(accounts.ServiceParams{
		Repo:           accounts.NewRepository(dbClient.DB()),
		PasswordConfig: cfg.Password,
		RetryConfig:    cfg.DB,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	farmService, err := farms.NewService(farms.ServiceParams{
		Repo:        farms.NewRepository(dbClient.DB()),
		Assets:      assetStore,
		Logger:      logg,
		RetryConfig: cfg.DB,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create farm service", err)
		os.Exit(1)
	}

	cropService, err := croplogs.NewService(croplogs.ServiceParams{
		Repo:        croplogs.NewRepository(dbClient.DB()),
		Assets:      assetStore,
		Logger:      logg,
		RetryConfig: cfg.DB,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create crop log service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			accountService,
			farmService,
			cropService,
			assetStore,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
