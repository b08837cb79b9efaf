package llm

import (
	"context"
	"io"
	"sync"
)

const streamBuffer = 16

// chunkStream adapts a push-style producer into a pull-style Stream.
type chunkStream struct {
	chunks    chan string
	errs      chan error
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// newChunkStream runs produce in its own goroutine. The producer outlives the
// call that started it, so only values, not cancellation, are taken from ctx.
func newChunkStream(ctx context.Context, produce func(ctx context.Context, emit func(string) error) error) *chunkStream {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &chunkStream{
		chunks: make(chan string, streamBuffer),
		errs:   make(chan error, 1),
		cancel: cancel,
	}

	go func() {
		defer close(s.chunks)

		emit := func(chunk string) error {
			select {
			case s.chunks <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := produce(ctx, emit); err != nil && ctx.Err() == nil {
			s.errs <- err
		}
	}()

	return s
}

func (s *chunkStream) Next(ctx context.Context) (string, error) {
	select {
	case chunk, ok := <-s.chunks:
		if ok {
			return chunk, nil
		}
		select {
		case err := <-s.errs:
			return "", err
		default:
			return "", io.EOF
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *chunkStream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}
