package history

import (
	"sync"

	"github.com/verdantlabs/voicerelay/internal/llm"
)

// Store keeps per-device conversation history bounded to maxEntries.
// Oldest entries are evicted pairwise-agnostic: the cap is on raw
// entries, so a user/assistant exchange costs two slots.
type Store struct {
	mu         sync.Mutex
	maxEntries int
	byDevice   map[string][]llm.Message
}

// New creates a store keeping at most 2*maxContext entries per device.
func New(maxContext int) *Store {
	if maxContext <= 0 {
		maxContext = 10
	}
	return &Store{
		maxEntries: maxContext * 2,
		byDevice:   make(map[string][]llm.Message),
	}
}

func (s *Store) Append(deviceID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.byDevice[deviceID], llm.Message{Role: role, Content: content})
	if excess := len(entries) - s.maxEntries; excess > 0 {
		entries = entries[excess:]
	}
	s.byDevice[deviceID] = entries
}

// Messages returns a copy of the device's history, oldest first.
func (s *Store) Messages(deviceID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.byDevice[deviceID]
	out := make([]llm.Message, len(entries))
	copy(out, entries)
	return out
}

// ClearDevice drops one device's history.
func (s *Store) ClearDevice(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byDevice, deviceID)
}

// Clear drops all history.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDevice = make(map[string][]llm.Message)
}
