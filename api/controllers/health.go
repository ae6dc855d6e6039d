package controllers

import (
	"context"
	"net/http"

	"github.com/farmlog-app/farmlog-backend/api/responses"
	"github.com/farmlog-app/farmlog-backend/pkg/config"
	pkgerrors "github.com/farmlog-app/farmlog-backend/pkg/errors"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
)

const envHeader = "X-FarmLog-Env"

// Pinger is the probe surface readiness checks use.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every supplied probe answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, probes map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for name, probe := range probes {
			if probe == nil {
				continue
			}
			if err := probe.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
