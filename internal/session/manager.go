package session

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"docchat/internal/prompt"
)

// Manager owns session lifecycles. Sessions expire after the configured
// TTL; there is no persistence across restarts.
type Manager struct {
	sessions *gocache.Cache
	dir      string
}

// NewManager creates a registry whose extraction directories live under
// dir, one subdirectory per session.
func NewManager(dir string, ttl time.Duration) *Manager {
	m := &Manager{
		sessions: gocache.New(ttl, ttl),
		dir:      dir,
	}
	// Expired sessions never pass through Reset, so their extracted
	// indices are removed on eviction.
	m.sessions.OnEvicted(func(id string, _ any) {
		os.RemoveAll(m.ExtractionDir(id))
	})
	return m
}

// Create starts a session with the given response language. The language
// must be one of the supported set.
func (m *Manager) Create(lang prompt.Language) (*Session, error) {
	if _, err := prompt.Build(lang); err != nil {
		return nil, err
	}
	s := &Session{
		ID:        uuid.NewString(),
		Language:  lang,
		CreatedAt: time.Now(),
	}
	m.sessions.Set(s.ID, s, gocache.DefaultExpiration)
	return s, nil
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// ExtractionDir is where this session's uploaded archive is unpacked.
// Scoping it per session keeps concurrent sessions from clobbering each
// other's indices.
func (m *Manager) ExtractionDir(id string) string {
	return filepath.Join(m.dir, id)
}

// Reset clears a session's state and removes its extracted index files.
func (m *Manager) Reset(s *Session) error {
	s.Reset()
	return os.RemoveAll(m.ExtractionDir(s.ID))
}
