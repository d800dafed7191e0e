// restore-seed is a one-shot tool to put back the starter catalog.
// Run it when starter products have been deleted by accident. Custom products
// and edited prices are kept.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"

	"bomboniere/internal/config"
	"bomboniere/internal/core"
	"bomboniere/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	st, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	restored, err := core.NewLedger(st).RestoreDefaultProducts(ctx)
	if err != nil {
		log.Fatalf("Failed to restore products: %v", err)
	}

	if len(restored) == 0 {
		log.Println("Starter catalog already complete.")
		return
	}
	for _, p := range restored {
		log.Printf("Restored %s %s (%s)", p.ID, p.Name, core.FormatBRL(p.Price))
	}
	log.Printf("Seed data restored successfully: %d products.", len(restored))
}
