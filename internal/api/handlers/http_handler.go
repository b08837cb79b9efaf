package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// ----------------------------------------------------------------------------------------------------------------
func (h *Handler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}

	response, err := h.chatService.Query(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("Query failed", zap.Error(err))
		h.sendErrorResponse(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

// ----------------------------------------------------------------------------------------------------------------
// QueryStreamHandler returns one chunk per request; "chunk" is null at the end
func (h *Handler) QueryStreamHandler(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}

	chunk, ok, err := h.chatService.QueryStream(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("Querystream failed", zap.Error(err))
		h.sendErrorResponse(w, err)
		return
	}

	var body struct {
		Chunk *string `json:"chunk"`
	}
	if ok {
		body.Chunk = &chunk
	}
	h.writeJSON(w, http.StatusOK, body)
}

// ----------------------------------------------------------------------------------------------------------------
func (h *Handler) SwitchToChatHandler(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.chatService.SwitchToChat(r.Context(), req.ConversationID)
	if err != nil {
		h.logger.Error("Switch to chat failed", zap.Error(err))
		h.sendErrorResponse(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"result": result})
}
