// Command server starts the AI job assistant HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/ai/openai"
	httpserver "github.com/fairyhunter13/ai-job-assistant/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/session/memory"
	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/session/redisstore"
	qdrantcli "github.com/fairyhunter13/ai-job-assistant/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/ai-job-assistant/internal/app"
	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	"github.com/fairyhunter13/ai-job-assistant/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

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

	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		slog.Error("failed to load prompts", slog.Any("error", err))
		os.Exit(1)
	}
	scheme, err := usecase.ParseScheme(cfg.RerankScheme)
	if err != nil {
		slog.Error("invalid rerank scheme", slog.Any("error", err))
		os.Exit(1)
	}

	aicl := openai.New(cfg)
	qcli := qdrantcli.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	app.EnsureJobCollection(ctx, cfg, qcli)

	// Session store: Redis when configured, process memory otherwise.
	var store domain.SessionStore
	var sessionPinger app.Pinger
	if cfg.RedisURL != "" {
		rs, err := redisstore.New(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			slog.Error("redis connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		store = rs
		sessionPinger = rs
		slog.Info("session store: redis", slog.Duration("ttl", cfg.SessionTTL))
	} else {
		store = memory.New()
		slog.Info("session store: in-memory")
	}

	index := qdrantcli.NewJobIndex(qcli, aicl, cfg.QdrantCollection)

	conv := usecase.NewConversationService(
		store,
		usecase.NewIntentExtractor(aicl, prompts),
		usecase.NewFollowupGenerator(aicl, prompts),
	)
	search := usecase.NewSearchService(index)
	ranker := usecase.NewRerankService(aicl, scheme, prompts, cfg.ChatModel, cfg.RerankPromptTokenLimit)

	qdrantCheck, aiCheck, sessionCheck := app.BuildReadinessChecks(cfg, sessionPinger)
	srv := httpserver.NewServer(cfg, conv, search, ranker, qdrantCheck, aiCheck, sessionCheck)
	handler := app.BuildRouter(cfg, srv)
	srvHTTP := app.Server(cfg, handler)

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
