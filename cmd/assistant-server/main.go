package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/huyvu15/Agentic-search-company/internal/api"
	"github.com/huyvu15/Agentic-search-company/internal/cache"
	"github.com/huyvu15/Agentic-search-company/internal/chat"
	"github.com/huyvu15/Agentic-search-company/internal/common/config"
	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/common/observability"
	"github.com/huyvu15/Agentic-search-company/internal/genai"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/assemble"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/classify"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/fanout"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/intent"
	"github.com/huyvu15/Agentic-search-company/internal/pipeline/synthesize"
	"github.com/huyvu15/Agentic-search-company/internal/websearch"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config load failed: %v", err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("model", cfg.GenAI.Model),
	)

	obs := observability.New("assistant-server")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Model client ---
	modelClient := genai.NewClient(genai.Config{
		APIKey:     cfg.GenAI.APIKey,
		Model:      cfg.GenAI.Model,
		BaseURL:    cfg.GenAI.BaseURL,
		Timeout:    config.GetDuration(cfg.GenAI.Timeout),
		MaxRetries: cfg.GenAI.MaxRetries,
	})
	if !modelClient.HasAPIKey() {
		zapLog.Warn("GEMINI_API_KEY is not set; model calls will fail and fallbacks will answer")
	}

	// --- Search + fetch ---
	searcher := websearch.NewDuckDuckGo(websearch.SearchConfig{
		BaseURL:    cfg.Search.BaseURL,
		Timeout:    config.GetDuration(cfg.Search.Timeout),
		MaxResults: cfg.Search.MaxResults,
	})
	fetcher := websearch.NewFetcher(websearch.FetchConfig{
		Timeout:  config.GetDuration(cfg.Fetch.Timeout),
		MaxBytes: cfg.Fetch.MaxBytes,
	})

	// --- Optional page cache with retry ---
	var pageCache *cache.PageCache
	if cfg.Cache.Enabled {
		err = retryWithBackoff(func() error {
			pageCache = cache.New(cache.Config{
				Address:  cfg.Cache.Address,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
				TTL:      config.GetDuration(cfg.Cache.TTL),
			})
			return pageCache.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, continuing without page cache", zap.Error(err))
			pageCache = nil
		} else {
			defer pageCache.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Pipeline stages ---
	classifyCfg := classify.DefaultConfig()

	intentCfg := intent.DefaultConfig()
	if cfg.Pipeline.FallbackQueryLimit > 0 {
		intentCfg.FallbackQueryLimit = cfg.Pipeline.FallbackQueryLimit
	}

	fanoutCfg := &fanout.Config{
		MaxConcurrency:  cfg.Fetch.MaxConcurrency,
		MaxTotalResults: cfg.Pipeline.MaxTotalResults,
		DedupeByURL:     cfg.Pipeline.DedupeByURL,
	}

	assembleCfg := assemble.DefaultConfig()
	if cfg.Pipeline.SnippetLimit > 0 {
		assembleCfg.SnippetLimit = cfg.Pipeline.SnippetLimit
	}

	var fanoutCache fanout.PageCache
	if pageCache != nil {
		fanoutCache = pageCache
	}

	orchestrator := pipeline.NewOrchestrator(
		classify.NewHandler(classifyCfg, modelClient, log),
		intent.NewHandler(intentCfg, modelClient, log),
		fanout.NewHandler(fanoutCfg, searcher, fetcher, fanoutCache, log),
		assemble.NewHandler(assembleCfg),
		synthesize.NewHandler(synthesize.DefaultConfig(), modelClient, log),
		obs,
		log,
	)

	sessions := chat.NewManager(modelClient, log)

	var cachePinger api.CachePinger
	if pageCache != nil {
		cachePinger = pageCache
	}

	server := api.NewServer(orchestrator, sessions, modelClient, cachePinger, obs, log)

	zapLog.Info("Assistant server ready", zap.String("address", cfg.Server.Address))

	if err := server.Start(ctx, api.Options{
		Address:         cfg.Server.Address,
		ReadTimeout:     config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:    config.GetDuration(cfg.Server.WriteTimeout),
		ShutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
	}); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLog.Fatal("http server failed", zap.Error(err))
	}

	zapLog.Info("Assistant server stopped")
}
