package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/diewo77/cashpro/internal/config"
	"github.com/diewo77/cashpro/internal/db"
	"github.com/diewo77/cashpro/internal/logger"
	"github.com/diewo77/cashpro/internal/metrics"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedFlag        = flag.Bool("seed", false, "Replace stored data with the sample data set on start")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init("cashpro", cfg.App.Dev)
	logger.SetLevel(cfg.App.LogLevel)
	log := logger.Component("main")

	dbConn, err := db.Open(cfg.Database, cfg.App.Migrations, logger.Component("db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if *migrateOnlyFlag {
		log.Info().Msg("migrations completed")
		return
	}

	repo := db.NewRepository(dbConn)
	today := time.Now()
	snap, seeded, err := db.LoadOrSeed(context.Background(), repo, today, *seedFlag || cfg.App.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load data")
	}
	log.Info().Bool("seeded", seeded).
		Int("products", len(snap.Products)).
		Int("invoices", len(snap.Invoices)).
		Msg("data loaded")

	m := metrics.New()
	st := store.New(snap,
		store.WithPersister(repo),
		store.WithObserver(m),
		store.WithLogger(logger.Component("store")),
	)
	reports := services.NewReportService(st, time.Now)
	m.RegisterLedger(st)

	app := NewApp(st, reports, m, cfg.App.Lang)

	read, write, idle := cfg.Server.Timeouts()
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      withLogging(app),
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Bool("dev", cfg.App.Dev).Str("metrics_endpoint", "/metrics").Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped gracefully")
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	log := logger.Component("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
