// Package llm is the gateway to the external model server. It speaks the
// OpenAI-compatible API, which covers both api.openai.com and a local Ollama
// instance serving /v1.
package llm

import (
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultBatchSize bounds how many texts go into one embedding request.
	DefaultBatchSize = 32

	// DefaultTimeout bounds every call to the model server.
	DefaultTimeout = 60 * time.Second
)

// Config selects the model server and the models used against it.
type Config struct {
	BaseURL        string // e.g. http://localhost:11434/v1
	APIKey         string
	EmbeddingModel string // e.g. nomic-embed-text
	ChatModel      string // e.g. qwen2:7b
	BatchSize      int
	Timeout        time.Duration
}

// Client wraps the OpenAI-compatible API client. It provides embedding and
// generation; both are deterministic contracts over an opaque service.
type Client struct {
	api       *openai.Client
	embedding string
	chat      string
	batchSize int
	timeout   time.Duration
}

// NewClient creates a client for the configured model server.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: base URL not configured")
	}
	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("llm: embedding model not configured")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	api := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	)

	return &Client{
		api:       &api,
		embedding: cfg.EmbeddingModel,
		chat:      cfg.ChatModel,
		batchSize: cfg.BatchSize,
		timeout:   cfg.Timeout,
	}, nil
}
