// Package session persists conversation histories keyed by an opaque session id
// and carries that id between requests in a signed cookie.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zhouzirui/kannada-chat/backend/internal/model/chat"
)

// ErrNotFound is returned by Get when no live session exists for the id.
var ErrNotFound = errors.New("session not found")

// Store is a key-value store of conversation histories.
//
// Concurrent read-modify-write cycles on the same id are not coordinated: the last Put wins.
type Store interface {
	Get(ctx context.Context, id string) (chat.History, error)
	Put(ctx context.Context, id string, history chat.History) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns an empty store. A non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a copy of the stored history.
func (s *MemoryStore) Get(_ context.Context, id string) (chat.History, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !sess.Expired(s.ttl, s.now()) {
		return sess.History.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A Put may have refreshed the entry since the read lock was released.
	current, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !current.Expired(s.ttl, s.now()) {
		return current.History.Clone(), nil
	}
	delete(s.sessions, id)
	return nil, ErrNotFound
}

// Put replaces the history stored under id.
func (s *MemoryStore) Put(_ context.Context, id string, history chat.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = chat.Session{
		ID:        id,
		History:   history.Clone(),
		UpdatedAt: s.now(),
	}
	return nil
}

// Delete removes the session. Missing ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
