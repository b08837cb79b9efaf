package service

import "context"

// Drain pulls chunks from svc until the active reply is exhausted, handing
// each to onChunk, and returns the concatenated reply. With the keep cursor
// policy an already active stream is drained regardless of text. When Drain
// stops early the stream is abandoned, so no later caller receives its tail.
func Drain(ctx context.Context, svc ChatService, text string, onChunk func(string) error) (string, error) {
	var full []byte
	for {
		chunk, ok, err := svc.QueryStream(ctx, text)
		if err != nil {
			svc.Abandon()
			return "", err
		}
		if !ok {
			return string(full), nil
		}
		full = append(full, chunk...)
		if err := onChunk(chunk); err != nil {
			svc.Abandon()
			return "", err
		}
	}
}
