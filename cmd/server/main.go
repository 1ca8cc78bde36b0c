package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/gunnas32/QR-Stock/internal/config"
	"github.com/gunnas32/QR-Stock/internal/infra"
	"github.com/gunnas32/QR-Stock/internal/registry"
	"github.com/gunnas32/QR-Stock/internal/router"
	"github.com/gunnas32/QR-Stock/internal/store"
	"github.com/gunnas32/QR-Stock/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Storage backend: JSON snapshot by default, Postgres when configured.
	var (
		st store.Store
		db *gorm.DB
	)
	switch cfg.StorageDriver {
	case "postgres":
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		st = store.NewPostgres(db)
	default:
		st = store.NewSnapshot(cfg.SnapshotPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items, err := st.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load inventory")
	}
	reg := registry.New()
	reg.Load(items)
	log.Info().Int("items", reg.Len()).Str("driver", cfg.StorageDriver).Msg("inventory loaded")

	// Redis is optional: without it the alert queue and the scan cache fall
	// back to in-process equivalents.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	// Alert notifiers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	var notifiers []infra.Notifier
	if cfg.SMTPHost != "" {
		notifiers = append(notifiers, infra.NewMailer(cfg))
	}
	if cfg.AlertWebhookURL != "" {
		notifiers = append(notifiers, infra.NewWebhookClient(cfg.AlertWebhookURL))
	}
	if len(notifiers) == 0 {
		log.Warn().Msg("no notifiers configured, low-stock alerts will be dropped")
	}

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)
	dispatcher.StartPool(ctx, cfg.WorkerPoolSize, worker.NewAlertWorker(notifiers, cb))
	worker.StartRedriveCron(ctx, dispatcher, cb)

	r := router.New(cfg, reg, st, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("QR-Stock listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}
	log.Info().Msg("server exited")
}
