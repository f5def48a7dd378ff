package otp

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("otp not found")

// Store keeps one-time codes keyed by email and purpose until they expire or
// are consumed.
type Store interface {
	Put(ctx context.Context, email, purpose, code string, ttl time.Duration) error
	Get(ctx context.Context, email, purpose string) (string, error)
	Delete(ctx context.Context, email, purpose string) error
}

func key(email, purpose string) string {
	return "otp:" + purpose + ":" + email
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Put(ctx context.Context, email, purpose, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key(email, purpose)] = memoryEntry{code: code, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, email, purpose string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key(email, purpose)]
	if !ok {
		return "", ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.items, key(email, purpose))
		return "", ErrNotFound
	}
	return entry.code, nil
}

func (s *MemoryStore) Delete(ctx context.Context, email, purpose string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key(email, purpose))
	return nil
}
