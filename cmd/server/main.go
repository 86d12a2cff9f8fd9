package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	rozgardb "github.com/garnizeh/rozgar/db"
	"github.com/garnizeh/rozgar/api"
	"github.com/garnizeh/rozgar/internal/audio"
	"github.com/garnizeh/rozgar/internal/config"
	"github.com/garnizeh/rozgar/internal/coordinator"
	"github.com/garnizeh/rozgar/internal/db"
	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/internal/onboarding"
	"github.com/garnizeh/rozgar/internal/outbox"
	"github.com/garnizeh/rozgar/internal/profile"
	"github.com/garnizeh/rozgar/internal/repository/redis"
	"github.com/garnizeh/rozgar/internal/repository/sqlite"
	"github.com/garnizeh/rozgar/internal/timer"
	"github.com/garnizeh/rozgar/pkg/models"
	"github.com/garnizeh/rozgar/pkg/repository"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	api.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting rozgar", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("close db", slog.Any("err", err))
		}
	}()
	if err := db.Migrate(ctx, database, rozgardb.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	kv, closeKV, err := openStore(ctx, cfg, database, logger)
	if err != nil {
		return err
	}
	defer closeKV()

	profiles, err := profile.NewStore(kv, logger)
	if err != nil {
		return err
	}
	seed, err := loadSeed(cfg.SeedPath)
	if err != nil {
		return err
	}

	var downstream events.Publisher = events.NewLogPublisher(logger)
	if cfg.Events.AMQPURL != "" {
		downstream = events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Queue, logger)
	}
	pool := outbox.NewWorkerPool(outbox.NewRepository(database), downstream, logger, outbox.Options{
		Workers:     cfg.Outbox.Workers,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	})
	poolCtx, stopPool := context.WithCancel(ctx)
	defer stopPool()
	pool.Start(poolCtx)
	defer pool.Stop()

	feed := geo.NewFeed()
	app, err := coordinator.New(coordinator.Deps{
		Profiles:    profiles,
		Seed:        seed,
		Clock:       timer.Real{},
		Locator:     feed,
		Player:      audio.NewSilent(logger),
		Transcriber: onboarding.NoSpeech{},
		Publisher:   pool,
		Logger:      logger,
	}, coordinator.Settings{
		OfferCountdown: cfg.Offer.Countdown,
		OfferDelay:     cfg.Offer.Delay,
		DeclineWindow:  cfg.Tracking.DeclineWindow,
		Tick:           cfg.Tick,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	v, err := app.Boot(ctx)
	if err != nil {
		return err
	}
	logger.Info("session restored", slog.String("screen", v.Screen))

	handler := api.SetupRoutes(cfg, version, buildTime, app, feed)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// openStore returns the device KV store selected by store.driver.
func openStore(ctx context.Context, cfg *config.Config, database *db.DB, logger *slog.Logger) (repository.KVStore, func(), error) {
	switch cfg.Store.Driver {
	case "redis":
		s, err := redis.Connect(ctx, redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("close redis", slog.Any("err", err))
			}
		}, nil
	default:
		return sqlite.New(database, logger), func() {}, nil
	}
}

// loadSeed reads the initial job board from path, or the built-in list.
func loadSeed(path string) ([]models.Job, error) {
	if path == "" {
		return jobboard.LoadSeed(rozgardb.SeedFiles, "seed/jobs.yaml")
	}
	return jobboard.LoadSeed(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}
