package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/models"
	"docchat/internal/prompt"
	"docchat/internal/rag"
	"docchat/internal/vectorstore"
)

type fakeEmbedder struct{ vec []float32 }

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vec, nil
}

type fakeIndex struct{ results []vectorstore.Result }

func (f *fakeIndex) Query(context.Context, []float32, int) ([]vectorstore.Result, error) {
	return f.results, nil
}

type fakeGenerator struct {
	answer string
	err    error
}

func (f *fakeGenerator) Generate(context.Context, string) (string, error) {
	return f.answer, f.err
}

func testPipeline(t *testing.T, generator rag.Generator) *rag.Pipeline {
	t.Helper()
	template, err := prompt.Build(prompt.English)
	require.NoError(t, err)
	return rag.New(&fakeEmbedder{vec: []float32{1}}, &fakeIndex{}, generator, template, 4)
}

func TestManager_CreateValidatesLanguage(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)

	_, err := m.Create("xx")
	require.Error(t, err)

	var langErr *prompt.UnsupportedLanguageError
	assert.True(t, errors.As(err, &langErr))
}

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)

	s, err := m.Create(prompt.French)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, prompt.French, s.Language)
	assert.False(t, s.Active())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("unknown")
	assert.False(t, ok)
}

func TestManager_ExpiredSessionDirectoryRemoved(t *testing.T) {
	m := NewManager(t.TempDir(), 20*time.Millisecond)
	s, err := m.Create(prompt.Italian)
	require.NoError(t, err)

	extractionDir := m.ExtractionDir(s.ID)
	require.NoError(t, os.MkdirAll(filepath.Join(extractionDir, "vectorstore"), 0o755))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(extractionDir)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSession_AskWithoutIndex(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)
	s, err := m.Create(prompt.English)
	require.NoError(t, err)

	_, err = s.Ask(context.Background(), "Anyone there?")
	assert.ErrorIs(t, err, ErrNoIndex)
	assert.Empty(t, s.History())
}

func TestSession_AskRecordsBothTurns(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)
	s, err := m.Create(prompt.English)
	require.NoError(t, err)
	s.AttachPipeline(testPipeline(t, &fakeGenerator{answer: "An answer."}))

	result, err := s.Ask(context.Background(), "A question?")
	require.NoError(t, err)
	assert.Equal(t, "An answer.", result.Answer)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.Message{Role: models.RoleUser, Text: "A question?"}, history[0])
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Text: "An answer."}, history[1])
}

func TestSession_GenerationFailureKeepsSessionUsable(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)
	s, err := m.Create(prompt.English)
	require.NoError(t, err)

	generator := &fakeGenerator{err: errors.New("timeout")}
	s.AttachPipeline(testPipeline(t, generator))

	_, err = s.Ask(context.Background(), "First question?")
	require.Error(t, err)

	var genErr *rag.GenerationError
	require.True(t, errors.As(err, &genErr))

	// The question survives and the failure is the assistant's turn.
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "First question?", history[0].Text)
	assert.Equal(t, models.RoleAssistant, history[1].Role)

	// A retry on a recovered backend works.
	generator.err = nil
	generator.answer = "Recovered."
	result, err := s.Ask(context.Background(), "First question?")
	require.NoError(t, err)
	assert.Equal(t, "Recovered.", result.Answer)
	assert.Len(t, s.History(), 4)
}

func TestSession_ResetClearsEverything(t *testing.T) {
	m := NewManager(t.TempDir(), time.Minute)
	s, err := m.Create(prompt.German)
	require.NoError(t, err)
	s.AttachPipeline(testPipeline(t, &fakeGenerator{answer: "Antwort."}))

	_, err = s.Ask(context.Background(), "Frage?")
	require.NoError(t, err)
	require.NotEmpty(t, s.History())

	extractionDir := m.ExtractionDir(s.ID)
	require.NoError(t, os.MkdirAll(filepath.Join(extractionDir, "vectorstore"), 0o755))

	require.NoError(t, m.Reset(s))

	assert.Empty(t, s.History())
	assert.False(t, s.Active())
	_, err = os.Stat(extractionDir)
	assert.True(t, os.IsNotExist(err))
}
