package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farmlog-app/farmlog-backend/api/controllers"
	"github.com/farmlog-app/farmlog-backend/api/middleware"
	"github.com/farmlog-app/farmlog-backend/internal/accounts"
	"github.com/farmlog-app/farmlog-backend/internal/assets"
	"github.com/farmlog-app/farmlog-backend/internal/croplogs"
	"github.com/farmlog-app/farmlog-backend/internal/farms"
	"github.com/farmlog-app/farmlog-backend/pkg/config"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
	"github.com/farmlog-app/farmlog-backend/pkg/metrics"
	"github.com/farmlog-app/farmlog-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	accountService accounts.Service,
	farmService farms.Service,
	cropService croplogs.Service,
	assetStore *assets.Store,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Timeout(cfg.App.RequestTimeout),
		middleware.Metrics(httpMetrics),
	)

	loginRL := passThrough
	signRL := passThrough
	if redisClient != nil {
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginUserLimit,
		)
		signPolicy := middleware.NewAuthRateLimitPolicy(
			"sign",
			cfg.AuthRateLimit.RegisterWindow,
			cfg.AuthRateLimit.RegisterIPLimit,
			cfg.AuthRateLimit.RegisterUserLimit,
		)
		loginRL = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		signRL = middleware.AuthRateLimit(signPolicy, redisClient, logg)
	}

	probes := map[string]controllers.Pinger{"database": dbP}
	if redisClient != nil {
		probes["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, probes))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.With(loginRL).Post("/login", controllers.AccountLogin(accountService, logg))
	r.With(signRL).Post("/sign", controllers.AccountSign(accountService, logg))
	r.Post("/duplicate", controllers.AccountDuplicate(accountService, logg))

	maxUpload := cfg.Assets.MaxUploadBytes()

	r.Route("/farm", func(r chi.Router) {
		r.Post("/add", controllers.FarmAdd(farmService, assetStore, maxUpload, logg))
		r.Get("/check", controllers.FarmCheck(farmService, logg))
		r.Put("/edit", controllers.FarmEdit(farmService, assetStore, maxUpload, logg))
		r.Delete("/delete", controllers.FarmDelete(farmService, logg))
		r.Post("/month", controllers.FarmMonth(farmService, logg))
	})

	r.Route("/crops", func(r chi.Router) {
		r.Post("/add", controllers.CropAdd(cropService, assetStore, maxUpload, logg))
		r.Get("/check", controllers.CropCheck(cropService, logg))
		r.Put("/edit", controllers.CropEdit(cropService, assetStore, maxUpload, logg))
		r.Delete("/delete", controllers.CropDelete(cropService, logg))
	})

	if assetStore != nil {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(assetStore.Dir())))
		r.Get("/uploads/*", files.ServeHTTP)
	}

	return r
}

func passThrough(next http.Handler) http.Handler {
	return next
}
