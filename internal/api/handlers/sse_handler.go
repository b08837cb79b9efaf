package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/service"

	"go.uber.org/zap"
)

// ------------------------------------------------------------------------------------------------------
// StreamHandler drains a whole reply over a websocket or, failing an
// upgrade request, as Server-Sent Events
func (h *Handler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if websocketRequested(r) {
		h.handleWebSocketStream(w, r)
		return
	}
	h.handleSSEStream(w, r)
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) handleSSEStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, apperror.NewValidationError("SSE streams require POST", nil))
		return
	}

	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	flush()

	_, err := service.Drain(r.Context(), h.chatService, req.Text, func(token string) error {
		// One JSON string per event keeps newlines inside chunks intact
		data, err := json.Marshal(token)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flush()
		return nil
	})

	if err != nil {
		h.logger.Error("Streaming failed", zap.Error(err))

		errorJSON, _ := json.Marshal(apperror.NewErrorResponse(err))
		if _, err := fmt.Fprintf(w, "data: %s\n\n", errorJSON); err != nil {
			h.logger.Error("Failed to write error message", zap.Error(err))
			return
		}
		flush()
		return
	}

	if _, err := w.Write([]byte("data: [DONE]\n\n")); err != nil {
		h.logger.Error("Failed to write completion marker", zap.Error(err))
		return
	}
	flush()
}
