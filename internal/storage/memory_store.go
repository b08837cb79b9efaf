package storage

import (
	"sync"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type MemoryStore struct {
	mu           sync.RWMutex
	messages     []Message
	maxExchanges int
}

// ------------------------------------------------------------------------------------------------------
// NewMemoryStore creates a new in-memory store keeping at most maxExchanges
// user/assistant pairs. A non-positive limit keeps everything.
func NewMemoryStore(maxExchanges int) *MemoryStore {
	return &MemoryStore{
		messages:     make([]Message, 0),
		maxExchanges: maxExchanges,
	}
}

// ------------------------------------------------------------------------------------------------------
// AddExchange records a completed question/answer pair. Both halves are added
// together so a failed request never leaves a dangling user message behind.
func (s *MemoryStore) AddExchange(user, assistant Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, user, assistant)
	s.trimToMaxExchanges()
}

// ------------------------------------------------------------------------------------------------------
func (s *MemoryStore) GetMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// ------------------------------------------------------------------------------------------------------
func (s *MemoryStore) trimToMaxExchanges() {
	if s.maxExchanges <= 0 {
		return
	}

	starts := exchangeStarts(s.messages)
	if len(starts) <= s.maxExchanges {
		return
	}

	s.messages = append([]Message(nil), s.messages[starts[len(starts)-s.maxExchanges]:]...)
}

// ------------------------------------------------------------------------------------------------------
// exchangeStarts returns the index of every user message followed by an assistant reply
func exchangeStarts(messages []Message) []int {
	starts := make([]int, 0, len(messages)/2)
	for i := 0; i+1 < len(messages); i++ {
		if messages[i].Role == RoleUser && messages[i+1].Role == RoleAssistant {
			starts = append(starts, i)
		}
	}
	return starts
}

// ------------------------------------------------------------------------------------------------------
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make([]Message, 0)
}
