package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shopdash/api/handlers"
	"github.com/angelmondragon/shopdash/api/middleware"
	"github.com/angelmondragon/shopdash/pkg/config"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Stores   handlers.ReturnHandler
	Gatherer prometheus.Gatherer
	OnReturn func(connected bool)
}

// NewRouter builds the local server the browser lands on after installing
// the app on a Shopify store. It also exposes health and metrics.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Get("/healthz", handlers.Healthz(p.Config, p.Logger))

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	if p.Stores != nil {
		r.Get(returnPath(p.Config), handlers.StoreReturn(p.Stores, p.Logger, p.OnReturn))
	}

	return r
}

func returnPath(cfg *config.Config) string {
	if cfg == nil || cfg.Callback.Path == "" {
		return "/settings"
	}
	return cfg.Callback.Path
}
