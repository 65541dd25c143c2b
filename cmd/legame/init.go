package legame

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/embedder"
	"github.com/soundprediction/legame/pkg/llm"
	"github.com/soundprediction/legame/pkg/logger"
	"github.com/soundprediction/legame/pkg/store"
)

// newLogger builds the process logger from configuration.
func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Format)
}

// newLLMClient builds the chat client, or returns nil when no API key is
// configured.
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil
	}

	var client llm.Client
	switch cfg.LLM.Provider {
	case "", "openai":
		temperature := cfg.LLM.Temperature
		maxTokens := cfg.LLM.MaxTokens
		client = llm.NewOpenAIClient(cfg.LLM.APIKey, llm.Config{
			Model:       cfg.LLM.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
			BaseURL:     cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		client = llm.NewCircuitBreakerClient(client, llm.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, "llm")
	}
	return client, nil
}

// newEmbedderClient builds the embedding client, or returns nil when the
// configured provider needs an API key and none is set.
func newEmbedderClient(cfg *config.Config) (embedder.Client, error) {
	var client embedder.Client
	switch cfg.Embedding.Provider {
	case "", "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, nil
		}
		client = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
			Model:     cfg.Embedding.Model,
			BaseURL:   cfg.Embedding.BaseURL,
			BatchSize: cfg.Embedding.BatchSize,
		})
	case "embedeverything":
		var err error
		client, err = embedder.NewEmbedEverythingClient(cfg.Embedding.Model)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		client = embedder.NewCircuitBreakerClient(client, embedder.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, "embedder")
	}
	return client, nil
}

// newClient wires the legame client from configuration.
func newClient(cfg *config.Config, log *slog.Logger) (*legame.Client, error) {
	llmClient, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	embedderClient, err := newEmbedderClient(cfg)
	if err != nil {
		return nil, err
	}

	clientConfig := &legame.Config{
		TopK:             cfg.Retrieval.TopK,
		MaxPathLength:    cfg.Retrieval.MaxPathLength,
		MatchThreshold:   cfg.Retrieval.Threshold,
		MaxContextTokens: cfg.Retrieval.MaxTokens,
		MaxEdgesPerNode:  legame.DefaultConfig().MaxEdgesPerNode,
	}
	return legame.NewClient(llmClient, embedderClient, clientConfig, log)
}

// openStore opens the configured persistence backend.
func openStore(cfg *config.Config) (store.Store, error) {
	var st store.Store
	var err error
	if cfg.Store.Driver == "neo4j" {
		st, err = store.OpenNeo4jStore(cfg.Store.Path,
			cfg.Store.Username, cfg.Store.Password, cfg.Store.Database)
	} else {
		st, err = store.Open(cfg.Store.Driver, cfg.Store.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}
