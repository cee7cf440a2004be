package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/MSAbhishek22/chameleon-agent/internal/config"
	"github.com/MSAbhishek22/chameleon-agent/internal/engagement"
	"github.com/MSAbhishek22/chameleon-agent/pkg/logging"
)

func TestBuildStoreDefaultsToMemory(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{SessionBackend: "memory", SessionTTL: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("buildStore: %v", err)
	}
	if _, ok := store.(*engagement.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestBuildStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := logging.New("error")
	cfg := &appconfig.Config{
		SessionBackend: "redis",
		SessionTTL:     time.Hour,
		RedisAddr:      mr.Addr(),
	}

	store, err := buildStore(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("buildStore: %v", err)
	}
	if _, ok := store.(*engagement.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}
}

func TestBuildStoreRedisUnreachable(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		SessionBackend: "redis",
		SessionTTL:     time.Hour,
		RedisAddr:      "127.0.0.1:1",
	}

	if _, err := buildStore(context.Background(), cfg, logger); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestProviderClientUnknown(t *testing.T) {
	logger := logging.New("error")
	if _, _, err := providerClient(context.Background(), "oracle", &appconfig.Config{}, logger); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestProviderClientMissingCredentialsDisables(t *testing.T) {
	logger := logging.New("error")

	client, closeFn, err := providerClient(context.Background(), "gemini", &appconfig.Config{}, logger)
	if err != nil {
		t.Fatalf("gemini without key: %v", err)
	}
	if client != nil || closeFn != nil {
		t.Fatal("expected gemini provider to be disabled without an API key")
	}

	client, closeFn, err = providerClient(context.Background(), "bedrock", &appconfig.Config{}, logger)
	if err != nil {
		t.Fatalf("bedrock without model id: %v", err)
	}
	if client != nil || closeFn != nil {
		t.Fatal("expected bedrock provider to be disabled without a model id")
	}
}

func TestBuildLLMClientNone(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{LLMProvider: "none"}

	client, closeFn, err := buildLLMClient(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("buildLLMClient: %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client, got %T", client)
	}
	if closeFn != nil {
		closeFn()
	}
}
