package llm

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEchoClient_Ask(t *testing.T) {
	client := NewEchoClient(5, nil)

	answer, err := client.Ask(context.Background(), "hello there")
	require.NoError(t, err)
	require.Equal(t, "hello there", answer)
	require.Len(t, client.store.Active().Messages.GetMessages(), 2)
}

func TestEchoClient_AskStream(t *testing.T) {
	client := NewEchoClient(5, nil)

	stream, err := client.AskStream(context.Background(), "one two three")
	require.NoError(t, err)
	require.Equal(t, []string{"one ", "two ", "three"}, drain(t, stream))
}

func TestChunkStream_CloseStopsProducer(t *testing.T) {
	produced := make(chan struct{})
	stream := newChunkStream(context.Background(), func(ctx context.Context, emit func(string) error) error {
		defer close(produced)
		for {
			if err := emit("x"); err != nil {
				return err
			}
		}
	})

	chunk, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "x", chunk)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	<-produced

	for {
		if _, err := stream.Next(context.Background()); err != nil {
			require.ErrorIs(t, err, io.EOF)
			return
		}
	}
}

func TestChunkStream_NextHonoursContext(t *testing.T) {
	block := make(chan struct{})
	stream := newChunkStream(context.Background(), func(ctx context.Context, emit func(string) error) error {
		<-block
		return nil
	})
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stream.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
