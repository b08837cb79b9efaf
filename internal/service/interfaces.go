package service

import "context"

// ChatService is the session exposed to RPC callers
type ChatService interface {
	// Query returns the full reply to text.
	Query(ctx context.Context, text string) (string, error)
	// QueryStream returns the next chunk of the active streamed reply,
	// starting one for text when none is active. ok is false once the reply
	// is exhausted; the following call starts a fresh stream.
	QueryStream(ctx context.Context, text string) (chunk string, ok bool, err error)
	// SwitchToChat forwards id to the chat client and returns its result.
	SwitchToChat(ctx context.Context, id string) (string, error)
	// Abandon drops the active stream, if any, so the next QueryStream
	// starts fresh.
	Abandon()
	// Close releases the active stream, if any.
	Close() error
}
