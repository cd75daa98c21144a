// Package session provides an in-memory token store mapping opaque session
// tokens to logged-in users.
package session

import (
	"sync"
	"time"

	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/google/uuid"
)

// entry is one live session.
type entry struct {
	user    *models.User
	expires time.Time
}

// Store maps session tokens to users. It is safe for concurrent use by
// HTTP handlers.
type Store struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
}

// New creates a Store whose sessions expire after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]entry),
		ttl:      ttl,
	}
}

// Create registers a new session for user and returns its token.
func (s *Store) Create(user *models.User) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = entry{user: user, expires: time.Now().Add(s.ttl)}
	return token
}

// Get returns the user for token, or false if the token is unknown or
// expired. Expired sessions are removed on lookup.
func (s *Store) Get(token string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(s.sessions, token)
		return nil, false
	}
	return e.user, true
}

// Delete removes the session for token, if any.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
