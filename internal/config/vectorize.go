package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"docchat/internal/chunker"
)

// VectorizeConfig is the ingestion tool's environment: only the
// embedding side of the stack is needed to build an index.
type VectorizeConfig struct {
	LLMBaseURL          string `env:"LLM_BASE_URL,notEmpty"`
	EmbeddingsModelName string `env:"EMBEDDINGS_MODEL_NAME,notEmpty"`
}

// ChunkingConfig is the optional YAML file controlling how documents are
// split before embedding.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// LoadVectorize reads the ingestion environment.
func LoadVectorize() (*VectorizeConfig, error) {
	_ = godotenv.Load()

	cfg := &VectorizeConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// LoadChunking reads the chunking config file; a missing file yields the
// defaults.
func LoadChunking(path string) (*ChunkingConfig, error) {
	cfg := &ChunkingConfig{
		ChunkSize:    chunker.DefaultChunkSize,
		ChunkOverlap: chunker.DefaultChunkOverlap,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}
	return cfg, nil
}
