// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cjk-assistant/internal/config"
	"cjk-assistant/internal/domain/ports/adapter"
	"cjk-assistant/internal/domain/ports/repository"
	aiAdapters "cjk-assistant/internal/infra/adapters/ai"
	"cjk-assistant/internal/infra/dataset"
	pg "cjk-assistant/internal/infra/db/postgres"
	"cjk-assistant/internal/infra/i18n"
	"cjk-assistant/internal/infra/logging"
	"cjk-assistant/internal/infra/memory"
	"cjk-assistant/internal/infra/metrics"
	red "cjk-assistant/internal/infra/redis"
	"cjk-assistant/internal/infra/sched"
	"cjk-assistant/internal/infra/web"
	"cjk-assistant/internal/nlu"
	"cjk-assistant/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (fake AI backend allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()

	// ---- Dataset ----
	datasetRepo := dataset.NewFileRepository(cfg.Engine.DatasetPath)
	ds, err := datasetRepo.Load(ctx)
	if err != nil {
		log.Fatalf("dataset: %v", err)
	}
	logger.Info().Str("path", cfg.Engine.DatasetPath).Int("intents", len(ds.Intents)).Msg("dataset loaded")

	// ---- Locales ----
	bundle, err := i18n.NewBundle(i18n.LocalesFS)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Content repository (Postgres, or static when no URL) ----
	var contentRepo repository.ContentRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		contentRepo = pg.NewPostgresContentRepo(pool)
		logger.Info().Msg("content repository: postgres")
	} else {
		contentRepo = memory.NewContentRepo()
		logger.Warn().Msg("database.url empty; content context disabled")
	}

	// ---- Session store (Redis, or in-memory with sweeper) ----
	var sessions repository.SessionStore
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		sessions = red.NewSessionStore(redisClient, cfg.Redis.TTL)
		logger.Info().Msg("session store: redis")
	} else {
		memStore := memory.NewSessionStore(cfg.Engine.SessionCapacity, cfg.Engine.SessionTTL)
		sessions = memStore
		sweeper := sched.NewSessionSweeper(cfg.Engine.SweepInterval, memStore, logger)
		go func() { _ = sweeper.Run(ctx) }()
		logger.Info().Msg("session store: in-memory")
	}

	// ---- Generation backend (Gemini -> OpenAI -> noop in dev) ----
	var gen adapter.GenerationClient
	switch {
	case cfg.AI.GeminiKey != "":
		gen, err = aiAdapters.NewGeminiClient(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("generation backend: gemini")
	case cfg.AI.OpenAIKey != "":
		gen, err = aiAdapters.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("openai client: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("generation backend: openai")
	case cfg.Runtime.Dev:
		gen = aiAdapters.NewNoopClient()
		logger.Warn().Msg("generation backend: noop (dev)")
	default:
		log.Fatalf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}

	// ---- Engine ----
	detector := nlu.NewDetectorChain(nlu.KeywordDetector{}, nlu.NewGenerativeDetector(gen))
	contextUC := usecase.NewContextUseCase(contentRepo, logger)
	assistantUC := usecase.NewAssistantUseCase(datasetRepo, sessions, gen, detector, contextUC, bundle, logger, usecase.Options{
		HistoryLimit:        cfg.Engine.HistoryLimit,
		RephraseTemperature: cfg.Engine.RephraseTemperature,
		FreeformTemperature: cfg.Engine.FreeformTemperature,
		RephraseMaxTokens:   cfg.Engine.RephraseMaxTokens,
		FreeformMaxTokens:   cfg.Engine.FreeformMaxTokens,
		GenerationTimeout:   cfg.AI.Timeout,
	})
	statsUC := usecase.NewStatsUseCase(sessions, datasetRepo)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Server.JWTSecret, cfg.Server.SecureAuth, 30*time.Minute)
	srv := web.NewServer(assistantUC, statsUC, datasetRepo, auth, cfg.Server.AdminAPIKey, cfg.Runtime.Dev, logger)
	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
