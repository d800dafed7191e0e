package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	webAdapter "bomboniere/internal/adapters/web"
	"bomboniere/internal/app"
	"bomboniere/internal/config"
	"bomboniere/internal/core"
	"bomboniere/internal/db"
	"bomboniere/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	var (
		reg      *prometheus.Registry
		recorder = metrics.New(nil)
	)
	if cfg.Server.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.New(reg)
	}

	ledger := core.NewLedger(st)
	svc := app.NewAppService(ledger, recorder, loc)
	handler := webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, reg)

	if err := webAdapter.ListenAndServe(ctx, cfg.Server.Port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
