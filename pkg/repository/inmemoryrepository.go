// Package repository keeps the live sessions of the process
package repository

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/pkg/game"
)

// ErrSessionNotFound is returned when no session exists for an id
var ErrSessionNotFound = errors.New("game not found")

// InMemorySessionRepository is an in-memory session registry. The map is guarded by
// an RWMutex; each session serializes its own mutations.
type InMemorySessionRepository struct {
	sessions map[string]*game.Session
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(logger *zap.Logger) *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*game.Session),
		logger:   logger,
	}
}

// GetOrCreate returns the session for id, creating it with create on first reference
func (r *InMemorySessionRepository) GetOrCreate(id string, create func() *game.Session) *game.Session {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another caller may have created it between the two locks
	if session, ok := r.sessions[id]; ok {
		return session
	}

	session = create()
	r.sessions[id] = session
	r.logger.Info("created session", zap.String("session_id", id))

	return session
}

// Get retrieves a session by id
func (r *InMemorySessionRepository) Get(id string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// List returns every session, ordered by id
func (r *InMemorySessionRepository) List() []*game.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*game.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	return sessions
}
