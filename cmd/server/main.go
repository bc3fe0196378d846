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

	"pharmacare/internal/config"
	"pharmacare/internal/infra"
	"pharmacare/internal/repository"
	"pharmacare/internal/router"
	"pharmacare/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title           PharmaCare API
// @version         1.0
// @description     Pharmacy management backend: inventory, billing and personal health records.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLogSQL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Async work: receipts, email and reminder notifications. Worker handlers
	// are wired here so the pool sees every infrastructure dependency.
	smtpCB := infra.NewCircuitBreaker(infra.DefaultSMTPBreakerConfig())
	mailer := infra.NewMailer(cfg, smtpCB)
	dispatcher := worker.NewDispatcher(rdb)

	pool := worker.NewPool(rdb)
	pool.Handle(worker.QueueReceipt, worker.JobReceipt,
		worker.NewReceiptWorker(repository.NewBillRepository(db), dispatcher, cfg.ReceiptStoragePath).Process)
	pool.Handle(worker.QueueEmail, worker.JobEmail, worker.NewEmailWorker(mailer).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	notifier := worker.NewReminderNotifier(
		repository.NewReminderRepository(db),
		repository.NewUserRepository(db),
		dispatcher,
		time.Duration(cfg.ReminderLookaheadMinutes)*time.Minute,
	)
	if _, err := worker.StartScheduler(ctx, cfg.ReminderSchedule, notifier, rdb); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ReminderSchedule).Msg("invalid REMINDER_SCHEDULE")
	}

	r := router.New(ctx, cfg, db, rdb, dispatcher, smtpCB)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("PharmaCare backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	pool.Wait()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// setupLogger: pretty console output in development, JSON in production.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "pharmacare").Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
