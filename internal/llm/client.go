package llm

import "context"

// Client is the conversational capability the RPC session is backed by.
type Client interface {
	// Ask sends text to the active conversation and returns the full reply.
	Ask(ctx context.Context, text string) (string, error)
	// AskStream starts a reply for text and returns it as a chunk stream.
	// The request is issued lazily; upstream failures surface from Next.
	AskStream(ctx context.Context, text string) (Stream, error)
	// SwitchConversation activates the conversation with the given id and
	// returns the id now active. An empty id starts a new conversation.
	SwitchConversation(ctx context.Context, id string) (string, error)
}

// Stream is a finite, non-restartable sequence of reply chunks.
type Stream interface {
	// Next returns the next chunk, or io.EOF once the reply is complete.
	Next(ctx context.Context) (string, error)
	// Close abandons the stream and releases the upstream connection.
	Close() error
}

// Factory constructs a Client. It is called lazily, on first use.
type Factory func() (Client, error)

var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*EchoClient)(nil)
)
