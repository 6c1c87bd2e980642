// jobboard — job listings board.
//
// Serves the four tabs (listings, favorites, profile, management) as
// server-rendered pages plus a JSON API. State is held in memory and
// persisted as three independent JSON values in a key-value store
// (memory, redis or postgres). On first start with an empty store, the
// job list is seeded once from SEED_URL.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RihabMhd/jobboard/internal/board"
	"github.com/RihabMhd/jobboard/internal/config"
	"github.com/RihabMhd/jobboard/internal/db"
	"github.com/RihabMhd/jobboard/internal/seed"
	"github.com/RihabMhd/jobboard/internal/store"
	"github.com/RihabMhd/jobboard/internal/web"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobboard] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[jobboard] Store: %v", err)
	}
	log.Printf("[jobboard] Store backend: %s", cfg.StoreBackend)

	// ── Domain state ─────────────────────────────────────────────────────
	svc := board.NewService(kv, nil)
	svc.Load(ctx)

	fetcher := seed.New(cfg.SeedURL)
	if err := svc.Seed(ctx, fetcher.Fetch); err != nil {
		// Not fatal: the app stays usable with an empty listing and the
		// page shows an inline error.
		log.Printf("[jobboard] Seed: %v", err)
	}

	// ── Favorites integrity sweep ────────────────────────────────────────
	c := cron.New()
	schedule := fmt.Sprintf("@every %dh", cfg.SweepIntervalHours)
	if _, err := c.AddFunc(schedule, func() {
		if removed, err := svc.PruneFavorites(context.Background()); err != nil {
			log.Printf("[jobboard] Favorites sweep: %v", err)
		} else if removed > 0 {
			log.Printf("[jobboard] Favorites sweep removed %d stale id(s)", removed)
		}
	}); err != nil {
		log.Fatalf("[jobboard] Cron: %v", err)
	}
	c.Start()
	defer c.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────
	h := web.New(svc, nil)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[jobboard] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[jobboard] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[jobboard] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobboard] Shutdown error: %v", err)
	}
	log.Println("[jobboard] Stopped.")
}

// openStore builds the key-value backend selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedis(rdb), nil
	case config.BackendPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewPostgres(ctx, pool)
	default:
		return store.NewMemory(), nil
	}
}
