package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSwitchConversation_LogsKnownConversations(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	client := NewEchoClient(5, zap.New(core))
	first := client.store.Active().ID

	id, err := client.SwitchConversation(context.Background(), "notes")
	require.NoError(t, err)
	require.Equal(t, "notes", id)

	entries := logs.FilterMessage("Switched conversation").All()
	require.Len(t, entries, 1)
	require.Equal(t, []interface{}{first, "notes"}, entries[0].ContextMap()["known_conversations"])
}
