// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the chat service configuration. A .env file is honored when
// present; in containerized deployments the variables are set
// externally.
type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Filesystem root for extracted indices, created if absent.
	VectorstoresDir string `env:"VECTORSTORES_DIR,notEmpty"`

	LLMModelName   string  `env:"LLM_MODEL_NAME,notEmpty"`
	LLMBaseURL     string  `env:"LLM_BASE_URL,notEmpty"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.2"`

	EmbeddingsModelName string `env:"EMBEDDINGS_MODEL_NAME,notEmpty"`

	// top_k for retrieval.
	NbRetrievedDocs int `env:"NB_RETRIEVED_DOCS" envDefault:"4"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

// Load reads the environment, validates it, and creates the
// vectorstores directory if it does not exist. Configuration errors are
// fatal to service setup.
func Load() (*Config, error) {
	// Missing .env is fine when variables are set externally.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.NbRetrievedDocs <= 0 {
		return nil, fmt.Errorf("NB_RETRIEVED_DOCS must be positive, got %d", cfg.NbRetrievedDocs)
	}
	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be in [0, 2], got %g", cfg.LLMTemperature)
	}

	if err := os.MkdirAll(cfg.VectorstoresDir, 0o755); err != nil {
		return nil, fmt.Errorf("create vectorstores dir: %w", err)
	}
	return cfg, nil
}
