// Package llm wraps the Ollama text-generation backend.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Stop tokens for instruction-tuned models served over Ollama.
var stopWords = []string{"[/INST]", "</s>", "<|im_end|>", "<</SYS>>"}

// Client generates completions from a single prompt. It is safe for
// concurrent use.
type Client struct {
	llm         *ollama.LLM
	temperature float64
}

func New(baseURL, model string, temperature float64) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	return &Client{llm: llm, temperature: temperature}, nil
}

// Generate blocks until the model answers or the context is done.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(c.temperature),
		llms.WithStopWords(stopWords),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
