package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"docchat/internal/models"
	"docchat/internal/prompt"
	"docchat/internal/rag"
	"docchat/internal/session"
	"docchat/internal/vectorstore"
)

// maxArchiveSize caps the whole upload request body, not just the
// in-memory buffering. Variable so tests can lower it.
var maxArchiveSize int64 = 256 << 20

// Handler serves the chat API. The embedder and generator are
// process-wide; each session gets its own pipeline when its archive is
// loaded.
type Handler struct {
	manager   *session.Manager
	embedder  rag.Embedder
	generator rag.Generator
	topK      int
	logger    zerolog.Logger
}

func NewHandler(manager *session.Manager, embedder rag.Embedder, generator rag.Generator, topK int, logger zerolog.Logger) *Handler {
	return &Handler{
		manager:   manager,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

type createSessionRequest struct {
	Language string `json:"language"`
}

type sessionResponse struct {
	ID          string           `json:"id"`
	Language    string           `json:"language"`
	IndexLoaded bool             `json:"index_loaded"`
	Messages    []models.Message `json:"messages"`
}

// CreateSession handles POST /api/sessions. The response language is
// fixed for the session's lifetime.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.manager.Create(prompt.Language(req.Language))
	if err != nil {
		var langErr *prompt.UnsupportedLanguageError
		if errors.As(err, &langErr) {
			h.respondError(w, http.StatusBadRequest, langErr.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Create session")
		h.respondError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	h.respondJSON(w, http.StatusCreated, sessionResponse{
		ID:       s.ID,
		Language: string(s.Language),
		Messages: []models.Message{},
	})
}

// GetSession handles GET /api/sessions/{id}: language, index state and
// chat history.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	h.respondJSON(w, http.StatusOK, sessionResponse{
		ID:          s.ID,
		Language:    string(s.Language),
		IndexLoaded: s.Active(),
		Messages:    s.History(),
	})
}

// UploadArchive handles POST /api/sessions/{id}/archive: a multipart ZIP
// holding a vectorstore/ directory. The session's extraction directory
// is cleared of any previous index before extraction.
func (h *Handler) UploadArchive(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxArchiveSize)
	if err := r.ParseMultipartForm(maxArchiveSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "archive exceeds the upload size limit")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, _, err := r.FormFile("archive")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, `missing "archive" file field`)
		return
	}
	defer file.Close()

	zipPath, err := saveUpload(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Save uploaded archive")
		h.respondError(w, http.StatusInternalServerError, "could not store uploaded archive")
		return
	}
	defer os.Remove(zipPath)

	store, err := h.loadIndex(zipPath, s)
	if err != nil {
		var loadErr *vectorstore.IndexLoadError
		if errors.As(err, &loadErr) {
			h.logger.Warn().Err(err).Str("session_id", s.ID).Msg("Index load failed")
			h.respondError(w, http.StatusUnprocessableEntity, "could not load your document index, please re-upload")
			return
		}
		h.logger.Error().Err(err).Str("session_id", s.ID).Msg("Archive upload failed")
		h.respondError(w, http.StatusInternalServerError, "could not process archive")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "loaded",
		"entries": store.Count(),
	})
}

func (h *Handler) loadIndex(zipPath string, s *session.Session) (*vectorstore.Store, error) {
	indexDir, err := vectorstore.ExtractArchive(zipPath, h.manager.ExtractionDir(s.ID))
	if err != nil {
		return nil, err
	}
	store, err := vectorstore.Load(indexDir)
	if err != nil {
		return nil, err
	}
	template, err := prompt.Build(s.Language)
	if err != nil {
		// Unreachable through the API: the language was validated at
		// session creation.
		return nil, err
	}
	s.AttachPipeline(rag.New(h.embedder, store, h.generator, template, h.topK))
	return store, nil
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /api/sessions/{id}/messages. A generation failure is
// recorded as the assistant's turn and reported; the question stays in
// the history so the user can retry.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		h.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := s.Ask(r.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoIndex):
			h.respondError(w, http.StatusConflict, "upload a document archive before asking questions")
		case isGenerationError(err):
			h.logger.Warn().Err(err).Str("session_id", s.ID).Msg("Generation failed")
			h.respondError(w, http.StatusBadGateway, "could not generate an answer, please try again")
		default:
			h.logger.Error().Err(err).Str("session_id", s.ID).Msg("Answer failed")
			h.respondError(w, http.StatusInternalServerError, "could not answer the question")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ResetSession handles DELETE /api/sessions/{id}: clears history and
// index unconditionally, no confirmation.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := h.manager.Reset(s); err != nil {
		h.logger.Error().Err(err).Str("session_id", s.ID).Msg("Reset session")
		h.respondError(w, http.StatusInternalServerError, "could not reset session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isGenerationError(err error) bool {
	var genErr *rag.GenerationError
	return errors.As(err, &genErr)
}

func saveUpload(file io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "docchat-upload-*.zip")
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return filepath.Clean(tmp.Name()), nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("Encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
