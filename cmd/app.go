package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/ai"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/assistant"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/backend"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/cache"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/config"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/users"
)

// app is every long-lived service, built once at startup.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	registry  *prometheus.Registry
	cache     *cache.Store
	users     *users.Service
	assistant assistant.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(reg)

	store := cache.New(cfg.CacheTTL, log, cache.WithMetrics(rec))
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, log, rec)
	userSvc := users.NewService(client, store, log)

	model, err := newModel(ctx, cfg, log, rec)
	if err != nil {
		return nil, err
	}

	svc := assistant.NewService(userSvc, client, model, log,
		assistant.WithLocation(cfg.Location),
		assistant.WithMetrics(rec),
	)

	log.Info("services wired",
		zap.String("backend", cfg.BackendURL),
		zap.String("llm_provider", cfg.LLMProvider),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("timezone", cfg.Location.String()),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		registry:  reg,
		cache:     store,
		users:     userSvc,
		assistant: svc,
	}, nil
}

func newModel(ctx context.Context, cfg *config.Config, log *zap.Logger, rec metrics.Recorder) (ai.AI, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return ai.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel, log, rec)
	default:
		return ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, log, rec), nil
	}
}
