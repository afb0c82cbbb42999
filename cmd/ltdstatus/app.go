package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jonwraymond/ltdstatus/config"
	"github.com/jonwraymond/ltdstatus/health"
	"github.com/jonwraymond/ltdstatus/observe"
	"github.com/jonwraymond/ltdstatus/probe"
	"github.com/jonwraymond/ltdstatus/resilience"
)

// app holds the wired dependencies shared by serve and check.
type app struct {
	obs      observe.Observer
	logger   observe.Logger
	registry *prometheus.Registry
	checker  *health.Aggregator
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obsCfg := cfg.Observe()
	obsCfg.Metrics.Registerer = registry
	obsCfg.Logging.Writer = logOut

	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("probe middleware: %w", err)
	}

	client := probe.NewClient(probe.Config{
		UserAgent:    cfg.ServiceName + "/" + cfg.Version,
		MaxBodyBytes: cfg.MaxBodyBytes,
		InFlight:     resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: cfg.MaxInFlight}),
		Timeout:      resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cfg.ProbeTimeout}),
	})

	checker := health.NewAggregator(client, health.AggregatorConfig{
		BaseURL:     cfg.BaseURL,
		MaxProducts: cfg.MaxProducts,
		MaxEditions: cfg.MaxEditions,
	}, health.WithMiddleware(mw), health.WithLogger(obs.Logger()))

	return &app{
		obs:      obs,
		logger:   obs.Logger(),
		registry: registry,
		checker:  checker,
	}, nil
}

// shutdown flushes telemetry.
func (a *app) shutdown(ctx context.Context) error {
	return a.obs.Shutdown(ctx)
}
