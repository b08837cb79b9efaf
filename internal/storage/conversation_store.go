package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Conversation is one chat thread the client can switch to.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	Messages  MessageStore
}

// ConversationStore tracks every known conversation and which one is active.
type ConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	activeID      string
	maxExchanges  int
	now           func() time.Time
}

// ------------------------------------------------------------------------------------------------------
// NewConversationStore creates a store with one fresh, active conversation.
func NewConversationStore(maxExchanges int) *ConversationStore {
	return newConversationStore(maxExchanges, time.Now)
}

func newConversationStore(maxExchanges int, now func() time.Time) *ConversationStore {
	s := &ConversationStore{
		conversations: make(map[string]*Conversation),
		maxExchanges:  maxExchanges,
		now:           now,
	}
	s.New()
	return s
}

// ------------------------------------------------------------------------------------------------------
// Active returns the conversation new messages are appended to.
func (s *ConversationStore) Active() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations[s.activeID]
}

// ------------------------------------------------------------------------------------------------------
// Activate makes id the active conversation, creating it when unknown.
func (s *ConversationStore) Activate(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		conv = s.create(id)
	}
	s.activeID = id
	return conv
}

// ------------------------------------------------------------------------------------------------------
// New starts a conversation under a fresh id and activates it.
func (s *ConversationStore) New() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.create(uuid.NewString())
	s.activeID = conv.ID
	return conv
}

// ------------------------------------------------------------------------------------------------------
// IDs lists known conversations, oldest first.
func (s *ConversationStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := make([]*Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		convs = append(convs, c)
	}
	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].CreatedAt.Equal(convs[j].CreatedAt) {
			return convs[i].ID < convs[j].ID
		}
		return convs[i].CreatedAt.Before(convs[j].CreatedAt)
	})

	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}
	return ids
}

func (s *ConversationStore) create(id string) *Conversation {
	conv := &Conversation{
		ID:        id,
		CreatedAt: s.now(),
		Messages:  NewMemoryStore(s.maxExchanges),
	}
	s.conversations[id] = conv
	return conv
}
