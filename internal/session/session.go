// Package session holds per-user chat state. Each session owns its own
// index and history; nothing is shared across sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"docchat/internal/models"
	"docchat/internal/prompt"
	"docchat/internal/rag"
)

// ErrNoIndex means no archive has been uploaded yet (or the session was
// reset) so there is no pipeline to answer with.
var ErrNoIndex = errors.New("no document index loaded for this session")

// Assistant turn recorded per language when the model call fails, so the
// failure is visible in the conversation and the user can retry.
var generationFailed = map[prompt.Language]string{
	prompt.English: "I could not generate an answer, please try again.",
	prompt.French:  "Je n'ai pas pu générer de réponse, veuillez réessayer.",
	prompt.German:  "Ich konnte keine Antwort erzeugen, bitte versuche es erneut.",
	prompt.Italian: "Non sono riuscito a generare una risposta, riprova.",
}

// Session is one user's conversation. The language is fixed at creation;
// changing it requires a reset. At most one question is in flight at a
// time per session.
type Session struct {
	ID        string
	Language  prompt.Language
	CreatedAt time.Time

	mu       sync.Mutex
	messages []models.Message
	pipeline *rag.Pipeline
}

// Active reports whether an index is loaded and questions can be asked.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline != nil
}

// History returns a copy of the conversation so far.
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AttachPipeline installs the answering pipeline built from a freshly
// loaded index.
func (s *Session) AttachPipeline(p *rag.Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipeline = p
}

// Ask records the question, runs the pipeline, and records the answer.
// On a generation failure the question stays in the history and the
// failure becomes the assistant's turn, leaving the session usable for
// the next question. The session is locked for the duration of the call.
func (s *Session) Ask(ctx context.Context, question string) (*models.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipeline == nil {
		return nil, ErrNoIndex
	}

	s.messages = append(s.messages, models.Message{Role: models.RoleUser, Text: question})

	result, err := s.pipeline.Answer(ctx, question)
	if err != nil {
		var genErr *rag.GenerationError
		if errors.As(err, &genErr) {
			s.messages = append(s.messages, models.Message{
				Role: models.RoleAssistant,
				Text: generationFailed[s.Language],
			})
		}
		return nil, err
	}

	s.messages = append(s.messages, models.Message{Role: models.RoleAssistant, Text: result.Answer})
	return result, nil
}

// Reset clears the history and drops the index in one step; there is no
// partial-reset state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.pipeline = nil
}
