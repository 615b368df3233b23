// Package conversation provides the in-memory per-conversation history
// store.
package conversation

import (
	"sync"
	"time"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/metrics"
)

// DefaultMaxEntries is the prune threshold when none is configured.
const DefaultMaxEntries = 50

// Store holds conversation histories keyed by conversation id. Entries are
// append-only and FIFO-pruned above the bound. Safe for concurrent access
// across distinct ids; callers serialize access to a single id.
type Store struct {
	mu         sync.RWMutex
	maxEntries int
	convs      map[string]*history
}

type history struct {
	entries      []model.Entry
	lastActivity time.Time
}

// NewStore creates a store with the given prune threshold.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		maxEntries: maxEntries,
		convs:      make(map[string]*history),
	}
}

// Append adds an entry, creating the conversation if absent, and prunes
// from the front until the length is within bounds.
func (s *Store) Append(id string, entry model.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.convs[id]
	if !ok {
		h = &history{}
		s.convs[id] = h
		metrics.ConversationsActive.Set(float64(len(s.convs)))
	}

	h.entries = append(h.entries, entry)
	h.lastActivity = time.Now()

	if over := len(h.entries) - s.maxEntries; over > 0 {
		h.entries = append([]model.Entry(nil), h.entries[over:]...)
	}
}

// Recent returns the last n entries, fewer if the conversation is shorter.
func (s *Store) Recent(id string, n int) []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.convs[id]
	if !ok || n <= 0 {
		return nil
	}
	entries := h.entries
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	return out
}

// All returns the full ordered history.
func (s *Store) All(id string) []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.convs[id]
	if !ok {
		return nil
	}
	out := make([]model.Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries in a conversation.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.convs[id]
	if !ok {
		return 0
	}
	return len(h.entries)
}

// EstimateTokens returns a rough token count for the conversation
// (characters over four). Advisory only.
func (s *Store) EstimateTokens(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.convs[id]
	if !ok {
		return 0
	}
	chars := 0
	for _, e := range h.entries {
		chars += len(e.Content)
	}
	return chars / 4
}

// Clear removes one conversation.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	metrics.ConversationsActive.Set(float64(len(s.convs)))
}

// ClearAll removes everything.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs = make(map[string]*history)
	metrics.ConversationsActive.Set(0)
}
