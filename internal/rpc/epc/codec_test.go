package epc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteMessage_Frame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, []any{Symbol("return"), int64(1), "é"}))

	// "é" is two bytes, so the payload is 15 bytes long
	require.Equal(t, "00000f(return 1 \"é\")", buf.String())
}

func TestReadMessage(t *testing.T) {
	r := strings.NewReader("000015(call 1 query (\"hi\"))00000b(methods 2)")

	msg, err := ReadMessage(r)
	require.NoError(t, err)
	require.Equal(t, []any{Symbol("call"), int64(1), Symbol("query"), []any{"hi"}}, msg)

	msg, err = ReadMessage(r)
	require.NoError(t, err)
	require.Equal(t, []any{Symbol("methods"), int64(2)}, msg)

	_, err = ReadMessage(r)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadMessage_BadFrames(t *testing.T) {
	_, err := ReadMessage(strings.NewReader("zzzzzz(x)"))
	require.ErrorContains(t, err, "invalid length header")

	_, err = ReadMessage(strings.NewReader("000010(short)"))
	require.ErrorContains(t, err, "short payload")
}
