// Package chunker splits page text into bounded, optionally overlapping
// chunks suitable for embedding.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docchat/internal/loader"
	"docchat/internal/models"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 0
)

// Boundary separators tried in order of preference before a hard
// character cut: paragraph, sentence, line, word.
var separators = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

// Chunker splits text on a character budget, preferring natural
// boundaries. Splitting is deterministic: the same input always yields
// the same chunks.
type Chunker struct {
	size    int
	overlap int
}

// New validates 0 <= overlap < size and returns a Chunker.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks every page in order. Each chunk keeps the metadata of the
// page it came from.
func (c *Chunker) Split(pages []loader.Page) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		for _, piece := range c.splitText(page.Text) {
			chunks = append(chunks, models.Chunk{
				Text:       piece,
				Source:     page.Source,
				Page:       page.Page,
				TotalPages: page.TotalPages,
			})
		}
	}
	return chunks
}

func (c *Chunker) splitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{text}
	}

	var pieces []string
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			if piece := strings.TrimSpace(text[start:]); piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}
		cut := c.breakPoint(text, start, end)
		if piece := strings.TrimSpace(text[start:cut]); piece != "" {
			pieces = append(pieces, piece)
		}
		next := cut - c.overlap
		for next > start && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			next = cut
		}
		start = next
	}
	return pieces
}

// breakPoint picks the cut position for the chunk starting at start. It
// searches the window for the most natural separator that keeps at least
// half the budget filled, falling back to a hard cut at end.
func (c *Chunker) breakPoint(text string, start, end int) int {
	window := text[start:end]
	minFill := len(window) / 2
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i >= minFill {
			return start + i + len(sep)
		}
	}
	// A hard cut must not land inside a multibyte rune.
	cut := end
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == start {
		cut = end
		for cut < len(text) && !utf8.RuneStart(text[cut]) {
			cut++
		}
	}
	return cut
}
