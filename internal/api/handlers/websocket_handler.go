package handlers

import (
	"net/http"
	"strings"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/service"

	"go.uber.org/zap"
)

func websocketRequested(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// handleWebSocketStream reads one {"text"} message per reply and pumps it back
// as {"token"} frames followed by {"done":"true"}, until the peer hangs up.
func (h *Handler) handleWebSocketStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var req QueryRequest
		if err := conn.ReadJSON(&req); err != nil {
			h.logger.Debug("WebSocket closed", zap.Error(err))
			return
		}

		_, err = service.Drain(r.Context(), h.chatService, req.Text, func(token string) error {
			return conn.WriteJSON(map[string]string{"token": token})
		})
		if err != nil {
			h.logger.Error("WebSocket streaming failed", zap.Error(err))
			if werr := conn.WriteJSON(apperror.NewErrorResponse(err)); werr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(map[string]string{"done": "true"}); err != nil {
			h.logger.Error("Failed to write done message", zap.Error(err))
			return
		}
	}
}
