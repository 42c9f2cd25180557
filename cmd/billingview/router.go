package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mihaimyh/billingview/internal/httputil"
	"github.com/mihaimyh/billingview/pkg/api"
	"github.com/mihaimyh/billingview/pkg/billing"
)

type routerConfig struct {
	Service         api.Service
	UserIDHeader    string
	PortalRateLimit int
	Gatherer        prometheus.Gatherer
	Logger          billing.Logger
	Metrics         billing.Metrics
}

func newRouter(cfg routerConfig) (http.Handler, error) {
	handler, err := api.NewHandler(api.Config{
		Service:         cfg.Service,
		GetCaller:       api.FromHeader(cfg.UserIDHeader),
		PortalRateLimit: cfg.PortalRateLimit,
		Logger:          cfg.Logger,
		Metrics:         cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Get(api.PathSubscription, handler.GetSubscription)
	portal := handler.PortalSessionHandler()
	r.Method(http.MethodPost, api.PathPortalSession, portal)
	r.Method(http.MethodGet, api.PathPortalSession, portal)
	r.Get(api.PathHistory, handler.GetBillingHistory)

	return r, nil
}
