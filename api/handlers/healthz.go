package handlers

import (
	"net/http"

	"github.com/angelmondragon/shopdash/api/responses"
	"github.com/angelmondragon/shopdash/pkg/config"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

const EnvHeader = "X-Shopdash-Env"

func Healthz(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"env":  cfg.App.Env,
				"path": r.URL.Path,
			})
			logg.Debug(ctx, "health.check")
		}

		w.Header().Set(EnvHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
