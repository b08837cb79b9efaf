package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperror "chat-shim/internal/error"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeService replays chunks per text and records calls
type fakeService struct {
	chunks    map[string][]string
	active    []string
	streamErr error
	queryErr  error
	switchErr error
	abandoned int
}

func (f *fakeService) Query(_ context.Context, text string) (string, error) {
	if f.queryErr != nil {
		return "", f.queryErr
	}
	return "answer to " + text, nil
}

func (f *fakeService) QueryStream(_ context.Context, text string) (string, bool, error) {
	if f.active == nil {
		if f.streamErr != nil {
			return "", false, f.streamErr
		}
		f.active = append([]string{}, f.chunks[text]...)
	}
	if len(f.active) == 0 {
		f.active = nil
		return "", false, nil
	}
	chunk := f.active[0]
	f.active = f.active[1:]
	return chunk, true, nil
}

func (f *fakeService) SwitchToChat(_ context.Context, id string) (string, error) {
	if f.switchErr != nil {
		return "", f.switchErr
	}
	return id, nil
}

func (f *fakeService) Abandon() {
	f.abandoned++
	f.active = nil
}

func (f *fakeService) Close() error { return nil }

func newTestHandler(svc *fakeService) *Handler {
	return NewHandler(svc, zap.NewNop())
}

func post(t *testing.T, fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestQueryHandler(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := post(t, h.QueryHandler, `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"response":"answer to hi"}`, rec.Body.String())
}

func TestQueryHandler_InvalidJSON(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := post(t, h.QueryHandler, `{"text":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperror.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, apperror.ErrorTypeValidation, resp.Error.Type)
}

func TestQueryHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "client unavailable", err: apperror.NewClientUnavailableError("chat client unavailable", apperror.ErrMissingAPIKey), want: http.StatusServiceUnavailable},
		{name: "upstream", err: apperror.NewUpstreamError("query failed", errors.New("boom")), want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeService{queryErr: tt.err})
			rec := post(t, h.QueryHandler, `{"text":"hi"}`)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestQueryStreamHandler(t *testing.T) {
	h := newTestHandler(&fakeService{chunks: map[string][]string{"hi": {"Hel", "lo"}}})

	for _, want := range []string{`{"chunk":"Hel"}`, `{"chunk":"lo"}`, `{"chunk":null}`} {
		rec := post(t, h.QueryStreamHandler, `{"text":"hi"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, want, rec.Body.String())
	}
}

func TestSwitchToChatHandler(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := post(t, h.SwitchToChatHandler, `{"conversation_id":"abc-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"result":"abc-123"}`, rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(&fakeService{})
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `"OK"`, rec.Body.String())
}

func TestStreamHandler_SSE(t *testing.T) {
	h := newTestHandler(&fakeService{chunks: map[string][]string{"hi": {"Hel", "lo\n"}}})

	rec := post(t, h.StreamHandler, `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
			events = append(events, strings.TrimPrefix(line, "data: "))
		}
	}
	require.Equal(t, []string{`"Hel"`, `"lo\n"`, `[DONE]`}, events)
}

func TestStreamHandler_SSEError(t *testing.T) {
	svc := &fakeService{streamErr: apperror.NewUpstreamError("querystream failed", errors.New("boom"))}
	h := newTestHandler(svc)

	rec := post(t, h.StreamHandler, `{"text":"hi"}`)
	require.Contains(t, rec.Body.String(), `"type":"upstream_error"`)
	require.NotContains(t, rec.Body.String(), "[DONE]")
	require.Equal(t, 1, svc.abandoned)
}

func TestStreamHandler_WebSocket(t *testing.T) {
	h := newTestHandler(&fakeService{chunks: map[string][]string{
		"hi":  {"Hel", "lo"},
		"bye": {"By", "e"},
	}})
	srv := httptest.NewServer(http.HandlerFunc(h.StreamHandler))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	for text, want := range map[string][]string{"hi": {"Hel", "lo"}, "bye": {"By", "e"}} {
		require.NoError(t, conn.WriteJSON(QueryRequest{Text: text}))

		var got []string
		for {
			var frame map[string]string
			require.NoError(t, conn.ReadJSON(&frame))
			if frame["done"] == "true" {
				break
			}
			got = append(got, frame["token"])
		}
		require.Equal(t, want, got)
	}
}
