package store

import (
	"sync"

	"github.com/parleyhq/parley/pkg/chat"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]chat.Message
}

// NewMemoryStore returns an in-process MessageStore.
// History does not survive a restart.
func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(chatID string) []chat.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	msgs := m.storage[chatID]
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (m *inMemory) Add(chatID string, msgs ...chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]chat.Message)
	}
	m.storage[chatID] = append(m.storage[chatID], msgs...)
	return nil
}

func (m *inMemory) Reset(chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
