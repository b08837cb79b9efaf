package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/llm"
)

// CursorPolicy decides what querystream does with new text while a stream
// is still being drained.
type CursorPolicy string

const (
	// CursorKeep ignores the new text and keeps draining the active stream.
	CursorKeep CursorPolicy = "keep"
	// CursorRestart abandons the active stream when the text changes.
	CursorRestart CursorPolicy = "restart"
)

// ParseCursorPolicy maps a config value to a CursorPolicy. Empty means keep.
func ParseCursorPolicy(s string) (CursorPolicy, error) {
	switch CursorPolicy(s) {
	case "", CursorKeep:
		return CursorKeep, nil
	case CursorRestart:
		return CursorRestart, nil
	default:
		return "", fmt.Errorf("unknown stream cursor policy %q", s)
	}
}

// CursorState is the lifecycle of a stream cursor.
type CursorState int

const (
	CursorAbsent CursorState = iota
	CursorActive
	CursorExhausted
)

func (s CursorState) String() string {
	switch s {
	case CursorAbsent:
		return "absent"
	case CursorActive:
		return "active"
	case CursorExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Cursor points into the reply stream started for one querystream text.
type Cursor struct {
	text   string
	stream llm.Stream
	state  CursorState
	pulled int
}

func newCursor(text string, stream llm.Stream) *Cursor {
	return &Cursor{text: text, stream: stream, state: CursorActive}
}

// Advance moves the cursor one chunk forward. At the end of the stream it
// returns ok=false and the cursor becomes exhausted.
func (c *Cursor) Advance(ctx context.Context) (string, bool, error) {
	if c.state != CursorActive {
		return "", false, nil
	}

	chunk, err := c.stream.Next(ctx)
	if errors.Is(err, io.EOF) {
		c.state = CursorExhausted
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	c.pulled++
	return chunk, true, nil
}

// State reports where the cursor is in its lifecycle.
func (c *Cursor) State() CursorState {
	if c == nil {
		return CursorAbsent
	}
	return c.state
}

func (c *Cursor) close() error {
	if err := c.stream.Close(); err != nil {
		return apperror.NewInternalError("failed to close stream", err)
	}
	return nil
}
