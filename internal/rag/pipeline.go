// Package rag composes retrieval and generation: embed the question,
// fetch the nearest chunks, fill the prompt template, and call the
// model.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"docchat/internal/models"
	"docchat/internal/vectorstore"
)

// GenerationError reports a failed or timed-out language-model call. It
// is local to one question; session state stays intact and the user may
// simply resubmit.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("language model call failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Embedder maps text to the fixed-length vector space the index was
// built in. The pipeline cannot detect a mismatch between the index's
// embedding model and this one; that is the caller's contract.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index answers nearest-neighbor queries over indexed chunks.
type Index interface {
	Query(ctx context.Context, embedding []float32, k int) ([]vectorstore.Result, error)
}

// Generator produces the model answer for a filled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const DefaultTopK = 4

// Pipeline holds the typed collaborators assembled by the caller; it
// chooses no defaults beyond topK.
type Pipeline struct {
	embedder  Embedder
	index     Index
	generator Generator
	template  prompts.PromptTemplate
	topK      int
}

func New(embedder Embedder, index Index, generator Generator, template prompts.PromptTemplate, topK int) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Pipeline{
		embedder:  embedder,
		index:     index,
		generator: generator,
		template:  template,
		topK:      topK,
	}
}

// Answer runs one question through the pipeline and returns the answer
// plus its sources in retrieval order. A zero-entry index is valid: the
// model is asked with an empty context. Model failures surface as
// *GenerationError.
func (p *Pipeline) Answer(ctx context.Context, question string) (*models.AnswerResult, error) {
	embedding, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	retrieved, err := p.index.Query(ctx, embedding, p.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	var contextText strings.Builder
	for _, r := range retrieved {
		contextText.WriteString(r.Chunk.Text)
		contextText.WriteString("\n\n")
	}

	filled, err := p.template.Format(map[string]any{
		"context":  contextText.String(),
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	answer, err := p.generator.Generate(ctx, filled)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	sources := make([]models.Source, 0, len(retrieved))
	for _, r := range retrieved {
		sources = append(sources, models.NewSource(r.Chunk))
	}
	return &models.AnswerResult{Answer: answer, Sources: sources}, nil
}
