// Package embedding wraps the Ollama embedding model behind the
// langchaingo embedder. Embedding is stateless: the same text yields the
// same vector, modulo floating-point nondeterminism in the model server.
package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"docchat/internal/models"
)

// NewOllama builds an embedder backed by an Ollama server. The same
// model must be used at index-build time and at query time; nothing in
// the index records which model produced it, so a mismatch silently
// degrades retrieval.
func NewOllama(baseURL, model string) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return embedder, nil
}

// EmbedChunks embeds every chunk text in one batch. Batching is a
// performance concern only; the vectors are the same as embedding each
// chunk individually.
func EmbedChunks(ctx context.Context, embedder *embeddings.EmbedderImpl, chunks []models.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	return vectors, nil
}
