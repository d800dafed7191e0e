package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bomboniere/internal/adapters/cli"
	webAdapter "bomboniere/internal/adapters/web"
	"bomboniere/internal/app"
	"bomboniere/internal/config"
	"bomboniere/internal/core"
	"bomboniere/internal/db"
	"bomboniere/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(openService, serve)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func openService(ctx context.Context) (app.ApplicationService, func(), error) {
	svc, _, release, err := build(ctx, nil)
	return svc, release, err
}

func serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	svc, cfg, release, err := build(ctx, reg)
	if err != nil {
		return err
	}
	defer release()

	var metricsReg *prometheus.Registry
	if cfg.Server.MetricsEnabled {
		metricsReg = reg
	}
	return webAdapter.ListenAndServe(ctx, cfg.Server.Port, webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, metricsReg))
}

// build loads configuration and opens the store. Domain metrics are
// registered on reg when it is non-nil.
func build(ctx context.Context, reg *prometheus.Registry) (app.ApplicationService, config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("config: %w", err)
	}

	st, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("store: %w", err)
	}

	recorder := metrics.New(nil)
	if reg != nil && cfg.Server.MetricsEnabled {
		recorder = metrics.New(reg)
	}
	return app.NewAppService(core.NewLedger(st), recorder, loc), cfg, closeStore, nil
}
