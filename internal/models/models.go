package models

import "path/filepath"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Chunk is a bounded span of document text plus its source location.
// Page is zero-based; it is converted to a one-based page only when a
// chunk is turned into a Source for display.
type Chunk struct {
	Text       string
	Source     string
	Page       int
	TotalPages int
}

// Message is a single turn in a chat conversation.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Source is the display form of a retrieved chunk. Document carries only
// the file basename and Page is one-based; internal paths and zero-based
// page indices never leave the pipeline.
type Source struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Chunk    string `json:"chunk"`
}

// AnswerResult is the outcome of a single question: the generated answer
// and the chunks it was grounded on, in retrieval order.
type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// NewSource builds the display form of a chunk.
func NewSource(c Chunk) Source {
	return Source{
		Document: filepath.Base(c.Source),
		Page:     c.Page + 1,
		Chunk:    c.Text,
	}
}
