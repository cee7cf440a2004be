package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/MSAbhishek22/chameleon-agent/internal/api/router"
	appconfig "github.com/MSAbhishek22/chameleon-agent/internal/config"
	"github.com/MSAbhishek22/chameleon-agent/internal/engagement"
	"github.com/MSAbhishek22/chameleon-agent/internal/observability/metrics"
	"github.com/MSAbhishek22/chameleon-agent/pkg/logging"
)

func main() {
	// Load .env in development; ignore absence in deployed environments.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chameleon-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	honeypotMetrics := metrics.NewHoneypotMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Session store
	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	// Dialogue generation clients
	llm, closeLLM, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}
	if closeLLM != nil {
		defer closeLLM()
	}

	engine := engagement.NewEngine(store, llm, engagement.EngineConfig{
		Model:              cfg.LLMModel,
		MaxTokens:          int32(cfg.LLMMaxTokens),
		Temperature:        float32(cfg.LLMTemperature),
		Timeout:            cfg.LLMTimeout,
		Workers:            cfg.WorkerCount,
		EngageUnclassified: cfg.EngageUnclassified,
	}, logger, honeypotMetrics)
	handler := engagement.NewHandler(engine, store, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		HoneypotHandler:    handler,
		HoneypotAPIKey:     cfg.HoneypotAPIKey,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (engagement.Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		return engagement.NewRedisStore(client, cfg.SessionTTL), nil
	default:
		store := engagement.NewMemoryStore(cfg.SessionTTL)
		store.StartEviction(ctx, 5*time.Minute)
		logger.Info("using in-memory session store", "ttl", cfg.SessionTTL.String())
		return store, nil
	}
}

// buildLLMClient wires the configured provider, optionally chained with a
// fallback provider. A missing provider config is not fatal: the engine
// degrades to canned utterances when llm is nil.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (engagement.LLMClient, func(), error) {
	primary, closePrimary, err := providerClient(ctx, cfg.LLMProvider, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LLMFallback == "" || cfg.LLMFallback == cfg.LLMProvider {
		return primary, closePrimary, nil
	}

	fallback, closeFallback, err := providerClient(ctx, cfg.LLMFallback, cfg, logger)
	if err != nil {
		if closePrimary != nil {
			closePrimary()
		}
		return nil, nil, err
	}

	closeAll := func() {
		if closePrimary != nil {
			closePrimary()
		}
		if closeFallback != nil {
			closeFallback()
		}
	}
	if primary == nil {
		return fallback, closeAll, nil
	}
	if fallback == nil {
		return primary, closeAll, nil
	}
	return engagement.NewFallbackLLMClient(primary, fallback, logger.Logger), closeAll, nil
}

func providerClient(ctx context.Context, provider string, cfg *appconfig.Config, logger *logging.Logger) (engagement.LLMClient, func(), error) {
	switch provider {
	case "gemini":
		if cfg.GoogleAPIKey == "" {
			logger.Warn("GOOGLE_API_KEY not set, gemini provider disabled")
			return nil, nil, nil
		}
		client, err := engagement.NewGeminiLLMClient(ctx, cfg.GoogleAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return client, func() { client.Close() }, nil
	case "bedrock":
		if cfg.BedrockModelID == "" {
			logger.Warn("BEDROCK_MODEL_ID not set, bedrock provider disabled")
			return nil, nil, nil
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("aws config: %w", err)
		}
		return engagement.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil, nil
	case "", "none":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
