// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// IndexFileName is the persisted index file inside DATABASE_DIRECTORY.
const IndexFileName = "index.gob"

// Config carries every recognized option. Components receive the values they
// need at construction; there is no other process-wide state.
type Config struct {
	DocsDirectory     string `envconfig:"DOCS_DIRECTORY" default:"./docs"`
	DatabaseDirectory string `envconfig:"DATABASE_DIRECTORY" default:"./db"`

	// DatabaseCreation selects rebuild-from-docs over loading the persisted
	// index when starting the chat surface.
	DatabaseCreation bool `envconfig:"DATABASE_CREATION" default:"false"`

	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"nomic-embed-text"`
	LLMModel       string `envconfig:"LLM_MODEL" default:"qwen2:7b"`

	// RAGLLM selects full RAG answers over pure retrieval output.
	RAGLLM bool `envconfig:"RAG_LLM" default:"false"`

	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"http://localhost:11434/v1"`
	LLMAPIKey  string `envconfig:"LLM_API_KEY" default:"ollama"`

	ChunkMaxChars     int `envconfig:"CHUNK_MAX_CHARS" default:"2000"`
	ChunkOverlapChars int `envconfig:"CHUNK_OVERLAP_CHARS" default:"200"`

	TopK int `envconfig:"TOP_K" default:"4"`

	// ScoreThreshold drops results scoring below it. The default 0 keeps
	// non-negative similarities only; set a negative value to keep everything.
	ScoreThreshold float32       `envconfig:"SCORE_THRESHOLD" default:"0"`
	EmbedBatchSize int           `envconfig:"EMBED_BATCH_SIZE" default:"32"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// Load reads the .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkMaxChars <= 0 {
		return fmt.Errorf("CHUNK_MAX_CHARS must be positive, got %d", c.ChunkMaxChars)
	}
	if c.ChunkOverlapChars < 0 || c.ChunkOverlapChars >= c.ChunkMaxChars {
		return fmt.Errorf("CHUNK_OVERLAP_CHARS must be in [0, CHUNK_MAX_CHARS), got %d", c.ChunkOverlapChars)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	return nil
}

// IndexPath returns the location of the persisted index file.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DatabaseDirectory, IndexFileName)
}
