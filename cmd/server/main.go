// Command server starts the mock-interview feedback HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/ai/gemini"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/ai/openai"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/cache"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/docstore/memory"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/docstore/postgres"
	httpserver "github.com/NexabitAI/mock-interviews-ai/internal/adapter/httpserver"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/observability"
	"github.com/NexabitAI/mock-interviews-ai/internal/adapter/repo"
	"github.com/NexabitAI/mock-interviews-ai/internal/app"
	"github.com/NexabitAI/mock-interviews-ai/internal/config"
	"github.com/NexabitAI/mock-interviews-ai/internal/covers"
	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
	"github.com/NexabitAI/mock-interviews-ai/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI, and pipeline instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Document store: Postgres in normal operation, in-memory when no DB is
	// configured (local development and tests).
	var store domain.DocumentStore
	var pool app.Pinger
	if cfg.DBURL != "" {
		pgPool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pgPool.Close()
		pg := postgres.NewStore(pgPool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("schema setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		store = pg
		pool = pgPool
	} else {
		slog.Warn("DB_URL empty, using in-memory document store")
		store = memory.NewStore()
	}

	interviewRepo := repo.NewInterviewRepo(store)
	feedbackRepo := repo.NewFeedbackRepo(store)

	// Completion clients: one for feedback scoring, one for question
	// generation (different model and temperature).
	var feedbackAI, questionAI domain.CompletionClient
	switch cfg.AIProvider {
	case config.ProviderGemini:
		cl, err := gemini.New(ctx, cfg)
		if err != nil {
			slog.Error("gemini client init failed", slog.Any("error", err))
			os.Exit(1)
		}
		feedbackAI = cl
		questionAI = cl.WithModel(cfg.QuestionModel, cfg.QuestionTemperature)
	default:
		cl := openai.New(cfg)
		feedbackAI = cl
		questionAI = cl.WithModel(cfg.QuestionModel, cfg.QuestionTemperature)
	}

	picker, err := covers.NewPicker(time.Now().UnixNano())
	if err != nil {
		slog.Error("cover catalog load failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Latest-interviews cache is optional.
	var latest *cache.LatestInterviews
	if cfg.RedisURL != "" {
		latest, err = cache.NewLatestInterviews(cfg.RedisURL, cfg.LatestCacheTTL)
		if err != nil {
			slog.Error("redis cache init failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	feedbackSvc := usecase.NewFeedbackService(interviewRepo, feedbackRepo, feedbackAI)
	interviewSvc := usecase.NewInterviewService(interviewRepo, questionAI, picker)
	querySvc := usecase.NewQueryService(interviewRepo, feedbackRepo, latest)

	dbCheck, redisCheck := app.BuildReadinessChecks(pool, latest)
	srv := httpserver.NewServer(cfg, feedbackSvc, interviewSvc, querySvc, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
