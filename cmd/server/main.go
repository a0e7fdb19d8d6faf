package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verdantlabs/voicerelay/internal/api"
	"github.com/verdantlabs/voicerelay/internal/batch"
	"github.com/verdantlabs/voicerelay/internal/cache"
	"github.com/verdantlabs/voicerelay/internal/config"
	"github.com/verdantlabs/voicerelay/internal/convlog"
	"github.com/verdantlabs/voicerelay/internal/database"
	"github.com/verdantlabs/voicerelay/internal/history"
	"github.com/verdantlabs/voicerelay/internal/llm"
	"github.com/verdantlabs/voicerelay/internal/media"
	"github.com/verdantlabs/voicerelay/internal/queue"
	"github.com/verdantlabs/voicerelay/internal/session"
	"github.com/verdantlabs/voicerelay/internal/stt"
	"github.com/verdantlabs/voicerelay/internal/tools"
	"github.com/verdantlabs/voicerelay/internal/tts"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database is optional: the relay serves voice turns without it,
	// only conversation persistence and the REST API lose function.
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without conversation store", "error", err)
		db = nil
	} else {
		defer db.Close()
		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var mediaCache *cache.Cache
	redisUp := rdb.Ping(ctx).Err() == nil
	if redisUp {
		mediaCache = cache.NewCache(rdb)
	} else {
		slog.Warn("redis unavailable, running without media cache or task queue")
	}

	gateway := llm.NewGateway(cfg.LLM)
	transcriber := stt.NewTranscriber(cfg.STT)

	chain, err := tts.NewChain(cfg.TTS)
	if err != nil {
		slog.Error("invalid tts chain", "error", err)
		os.Exit(1)
	}
	synth := batch.NewSynthesizer(chain)

	mediaClient := media.NewClient(cfg.Media, mediaCache)
	resolver := tools.NewResolver(mediaClient)

	var turnLogger session.TurnLogger
	if redisUp {
		queueClient := queue.NewClient(cfg.Redis)
		defer queueClient.Close()
		turnLogger = queueClient
	}

	registry := session.NewRegistry()
	hist := history.New(cfg.LLM.MaxContext)
	sessions := session.NewRouter(
		registry, hist, gateway, transcriber, resolver, synth, turnLogger,
		cfg.Session, cfg.LLM, cfg.Audio,
	)

	var logs *convlog.Service
	if db != nil {
		logs = convlog.NewService(db)
	}

	router := api.NewRouter(db, rdb, cfg, sessions, logs)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket sessions outlive any sane write timeout
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting relay server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
