package epc

import (
	"fmt"
	"io"
	"strconv"
)

const (
	headerLen  = 6
	maxPayload = 1<<24 - 1
)

// ReadMessage reads one framed message and parses its payload.
func ReadMessage(r io.Reader) (any, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	n, err := strconv.ParseUint(string(header[:]), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("epc: invalid length header %q", header[:])
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("epc: short payload: %w", err)
	}

	return Parse(string(payload))
}

// WriteMessage encodes v and writes it with its length header.
func WriteMessage(w io.Writer, v any) error {
	payload, err := Marshal(v)
	if err != nil {
		return err
	}
	if len(payload) > maxPayload {
		return fmt.Errorf("epc: payload of %d bytes exceeds frame limit", len(payload))
	}

	_, err = io.WriteString(w, fmt.Sprintf("%06x%s", len(payload), payload))
	return err
}
