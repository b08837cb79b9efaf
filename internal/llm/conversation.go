package llm

import (
	"context"

	"chat-shim/internal/storage"

	"go.uber.org/zap"
)

// conversations is shared by every backend: it owns the per-conversation
// history and implements SwitchConversation.
type conversations struct {
	store  *storage.ConversationStore
	logger *zap.Logger
}

func newConversations(maxExchanges int, logger *zap.Logger) conversations {
	if logger == nil {
		logger = zap.NewNop()
	}
	return conversations{
		store:  storage.NewConversationStore(maxExchanges),
		logger: logger,
	}
}

// SwitchConversation activates id, or a brand new conversation when id is empty.
func (c conversations) SwitchConversation(_ context.Context, id string) (string, error) {
	var conv *storage.Conversation
	if id == "" {
		conv = c.store.New()
	} else {
		conv = c.store.Activate(id)
	}

	c.logger.Info("Switched conversation",
		zap.String("conversation_id", conv.ID),
		zap.Int("history", len(conv.Messages.GetMessages())),
		zap.Strings("known_conversations", c.store.IDs()),
	)
	return conv.ID, nil
}

// prompt returns the conversation a question is asked in and the messages to send.
func (c conversations) prompt(text string) (*storage.Conversation, storage.Message, []storage.Message) {
	conv := c.store.Active()
	user := storage.Message{Role: storage.RoleUser, Content: text}
	return conv, user, append(conv.Messages.GetMessages(), user)
}
