package api

import (
	"net/http"

	"chat-shim/internal/api/handlers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures HTTP routes
func SetupRouter(handler *handlers.Handler, logger *zap.Logger) *mux.Router {
	registerMetrics()

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return LoggingMiddleware(logger, next)
	})

	router.HandleFunc("/health", handler.HealthHandler).Methods(http.MethodGet)

	router.HandleFunc("/rpc/query", handler.QueryHandler).Methods(http.MethodPost)
	router.HandleFunc("/rpc/querystream", handler.QueryStreamHandler).Methods(http.MethodPost)
	router.HandleFunc("/rpc/switch_to_chat", handler.SwitchToChatHandler).Methods(http.MethodPost)
	router.HandleFunc("/rpc/stream", handler.StreamHandler).Methods(http.MethodGet, http.MethodPost)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}
