// Package memory holds in-process repository implementations.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
}

func NewSessionRepository() auth.SessionRepository {
	return &sessionRepository{sessions: make(map[string]auth.Session)}
}

func (r *sessionRepository) Create(_ context.Context, s auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *sessionRepository) GetByID(_ context.Context, id string) (auth.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return s, nil
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return auth.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *sessionRepository) DeleteExpired(_ context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, s := range r.sessions {
		if s.Expired(now) {
			ids = append(ids, id)
			delete(r.sessions, id)
		}
	}
	return ids, nil
}
