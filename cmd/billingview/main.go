// Command billingview serves the billing subscription, portal-session and
// history routes backed by Stripe.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/mihaimyh/billingview/internal/config"
	"github.com/mihaimyh/billingview/pkg/billing"
	zerologadapter "github.com/mihaimyh/billingview/pkg/billing/logger/zerolog"
	prommetrics "github.com/mihaimyh/billingview/pkg/billing/metrics/prometheus"
	"github.com/mihaimyh/billingview/pkg/billing/stripe"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "billingview: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zlog := zerolog.New(os.Stdout).Level(cfg.Level()).With().Timestamp().Str("service", "billingview").Logger()
	logger := zerologadapter.NewLogger(zlog)

	for _, name := range cfg.MissingSecrets() {
		logger.Warn("billing setting is not configured; requests will fail with a configuration error",
			billing.Field{Key: "setting", Value: name})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := prommetrics.NewMetrics(reg, cfg.MetricsNamespace)

	provider, err := stripe.NewProvider(stripe.Config{
		Config: billing.Config{
			APIKey:    cfg.StripeSecretKey,
			ReturnURL: cfg.ReturnURL,
			Metrics:   metrics,
			Logger:    logger,
		},
		BackendURL: cfg.StripeAPIBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create stripe provider: %w", err)
	}

	resolver, closeResolver, err := buildResolver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeResolver()

	svc, err := billing.NewService(billing.ServiceConfig{
		Provider: provider,
		Resolver: resolver,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		return err
	}

	router, err := newRouter(routerConfig{
		Service:         svc,
		UserIDHeader:    cfg.UserIDHeader,
		PortalRateLimit: cfg.PortalRateLimit,
		Gatherer:        reg,
		Logger:          logger,
		Metrics:         metrics,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", billing.Field{Key: "addr", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
