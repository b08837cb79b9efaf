package storage

import (
	"context"
	"time"
)

// MessageStore holds the message history of one conversation
type MessageStore interface {
	AddExchange(user, assistant Message)
	GetMessages() []Message
	Clear()
}

// CacheStore caches token counts for message histories
type CacheStore interface {
	GetTokenCount(ctx context.Context, messages []Message) (int, bool, error)
	SetTokenCount(ctx context.Context, messages []Message, count int, ttl time.Duration) error
	Close() error
}
