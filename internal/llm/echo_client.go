package llm

import (
	"context"
	"strings"

	"chat-shim/internal/storage"

	"go.uber.org/zap"
)

// EchoClient answers every question with the question itself. It needs no
// network and is useful for checking the editor side of the wiring.
type EchoClient struct {
	conversations
}

func NewEchoClient(maxExchanges int, logger *zap.Logger) *EchoClient {
	return &EchoClient{conversations: newConversations(maxExchanges, logger)}
}

func (c *EchoClient) Ask(_ context.Context, text string) (string, error) {
	conv, user, _ := c.prompt(text)
	conv.Messages.AddExchange(user, storage.Message{Role: storage.RoleAssistant, Content: text})
	return text, nil
}

// AskStream streams text back one word (with its trailing space) at a time.
func (c *EchoClient) AskStream(ctx context.Context, text string) (Stream, error) {
	conv, user, _ := c.prompt(text)

	return newChunkStream(ctx, func(ctx context.Context, emit func(string) error) error {
		for _, word := range strings.SplitAfter(text, " ") {
			if word == "" {
				continue
			}
			if err := emit(word); err != nil {
				return err
			}
		}
		conv.Messages.AddExchange(user, storage.Message{Role: storage.RoleAssistant, Content: text})
		return nil
	}), nil
}
