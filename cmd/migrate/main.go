package main

import (
	"context"
	"log"
	"time"

	"bomboniere/internal/config"
	"bomboniere/internal/db"
	"bomboniere/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		log.Fatalf("[CONFIG] store driver is %q; migrations only apply to %q", cfg.Store.Driver, config.DriverPostgres)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()
	log.Println("[CONNECT] success")

	statuses, err := migrations.Apply(ctx, pool)
	for _, s := range statuses {
		if s.Applied {
			log.Printf("[APPLY] %s", s.Name)
		} else {
			log.Printf("[SKIP] %s", s.Name)
		}
	}
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	log.Println("[DONE] All migrations processed.")
}
