package main

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/qninhdt/aethelgard/server/internal/api"
	"github.com/qninhdt/aethelgard/server/internal/config"
	"github.com/qninhdt/aethelgard/server/internal/db"
	"github.com/qninhdt/aethelgard/server/internal/game"
	mw "github.com/qninhdt/aethelgard/server/internal/middleware"
	"github.com/qninhdt/aethelgard/server/internal/oracle"
	"github.com/qninhdt/aethelgard/server/internal/story"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open conversation store", "driver", cfg.StoreDriver, "error", err)
		return 1
	}
	defer closeStore.Close()

	model, closeModel, err := buildModel(ctx, cfg)
	if err != nil {
		logger.Error("failed to build oracle", "provider", cfg.Provider, "error", err)
		return 1
	}
	defer closeModel.Close()

	pacing, err := story.NewPacing(cfg.Pacing)
	if err != nil {
		logger.Error("invalid pacing rules", "error", err)
		return 1
	}

	service := oracle.NewService(model, store, logger)
	registry := game.NewRegistry(func() (*game.Controller, error) {
		return game.NewController(service, game.Options{
			SlowAfter:        cfg.SlowAfter,
			NotificationTTL:  cfg.NotificationTTL,
			EscalationChance: cfg.SkillEscalationChance,
			Pacing:           pacing,
			Logger:           logger,
		})
	}, cfg.SessionIdleTTL, cfg.MaxSessions, logger)

	secret := cfg.SessionSecret
	if secret == "" {
		logger.Warn("SESSION_SECRET not set, handles will not survive a restart")
		secret = rand.Text()
	}
	handles := mw.NewHandles(secret, cfg.SessionIdleTTL)
	limiter := mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	server := api.NewServer(registry, handles, limiter, logger)

	sweepEvery := cfg.SessionIdleTTL / 4
	if sweepEvery < time.Minute {
		sweepEvery = time.Minute
	}
	go registry.Run(ctx, sweepEvery)
	go pruneLimiter(ctx, limiter, sweepEvery)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr(), "provider", cfg.Provider, "store", cfg.StoreDriver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			return 1
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return 1
	}
	if n := registry.Shutdown(shutdownCtx); n > 0 {
		logger.Info("closed sessions", "count", n)
	}
	return 0
}

// openStore selects the conversation store. Sessions left in a sqlite file
// belong to controllers that died with the previous process and are purged.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (oracle.ConversationStore, io.Closer, error) {
	if cfg.StoreDriver != config.StoreSQLite {
		return oracle.NewMemoryStore(cfg.HistoryWindow), nopCloser{}, nil
	}

	database, err := db.NewDB(cfg.DBPath, cfg.HistoryWindow)
	if err != nil {
		return nil, nil, err
	}
	stale, err := database.Sessions(ctx)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	for _, id := range stale {
		if err := database.Delete(ctx, id); err != nil {
			logger.Warn("failed to purge stale session", "session", id, "error", err)
		}
	}
	if len(stale) > 0 {
		logger.Info("purged stale sessions", "count", len(stale))
	}
	return database, database, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildModel selects the generative back end.
func buildModel(ctx context.Context, cfg *config.Config) (oracle.Model, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		client := oracle.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterURL)
		return oracle.NewOpenRouterModel(client, cfg.NarratorModel, cfg.ValidatorModel, cfg.ImageModel), nopCloser{}, nil
	default:
		m, err := oracle.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.NarratorModel, cfg.ValidatorModel, cfg.ImageModel)
		if err != nil {
			return nil, nil, err
		}
		return m, m, nil
	}
}

func pruneLimiter(ctx context.Context, limiter *mw.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Prune(every)
		}
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
