package handlers

import (
	"encoding/json"
	"net/http"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/service"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	chatService service.ChatService
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// QueryRequest is the body of /rpc/query, /rpc/querystream and /rpc/stream
type QueryRequest struct {
	Text string `json:"text"`
}

// SwitchRequest is the body of /rpc/switch_to_chat
type SwitchRequest struct {
	ConversationID string `json:"conversation_id"`
}

// ------------------------------------------------------------------------------------------------------
func NewHandler(chatService service.ChatService, logger *zap.Logger) *Handler {
	return &Handler{
		chatService: chatService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			// The gateway only listens for a local editor process
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, "OK")
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		h.sendErrorResponse(w, apperror.NewValidationError("Invalid JSON in request body", err))
		return false
	}
	return true
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// ------------------------------------------------------------------------------------------------------
func (h *Handler) sendErrorResponse(w http.ResponseWriter, err error) {
	statusCode := apperror.GetHTTPStatusCode(err)
	errorResponse := apperror.NewErrorResponse(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(errorResponse); encodeErr != nil {
		h.logger.Error("Failed to encode error response",
			zap.Error(encodeErr),
			zap.NamedError("cause", err),
		)
	}
}
