package config

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"chat-shim/internal/api"
	"chat-shim/internal/api/handlers"
	apperror "chat-shim/internal/error"
	"chat-shim/internal/llm"
	"chat-shim/internal/logging"
	"chat-shim/internal/rpc"
	"chat-shim/internal/rpc/epc"
	"chat-shim/internal/rpc/jsonrpc"
	"chat-shim/internal/service"
	"chat-shim/internal/storage"

	"go.uber.org/zap"
)

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewLogger() (*zap.Logger, error) {
	if err := logging.Init(c.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logging.Logger, nil
}

// ------------------------------------------------------------------------------------------------------
// NewCacheStore connects to Redis. It returns nil when caching is disabled or
// Redis is unreachable.
func (c *Config) NewCacheStore(ctx context.Context, logger *zap.Logger) storage.CacheStore {
	if c.RedisAddr == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	redisStore, err := storage.NewRedisStore(ctx, c.RedisAddr, c.RedisPassword)
	if err != nil {
		logger.Warn("Failed to connect to Redis, continuing without token cache",
			zap.Error(err),
		)
		return nil
	}
	logger.Info("Connected to Redis", zap.String("redis_addr", c.RedisAddr))
	return redisStore
}

// ------------------------------------------------------------------------------------------------------
// NewClientFactory returns the no-argument constructor the session calls on first use
func (c *Config) NewClientFactory(cache storage.CacheStore, logger *zap.Logger) llm.Factory {
	return func() (llm.Client, error) {
		switch c.Backend {
		case BackendEcho:
			return llm.NewEchoClient(c.MaxExchanges, logger), nil
		case BackendOpenAI:
			client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
				APIKey:       c.APIKey,
				BaseURL:      c.BaseURL,
				Model:        c.Model,
				MaxTokens:    c.MaxTokens,
				MaxExchanges: c.MaxExchanges,
				Timeout:      c.Timeout,
			}, cache, logger)
			if err != nil {
				return nil, err
			}
			return client, nil
		default:
			return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownBackend, c.Backend)
		}
	}
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewChatService(ctx context.Context, logger *zap.Logger) (service.ChatService, storage.CacheStore) {
	cacheStore := c.NewCacheStore(ctx, logger)

	factory := c.NewClientFactory(cacheStore, logging.Named("llm"))

	chatService := service.NewChatService(factory, c.CursorPolicy, logging.Named("session"))

	return api.Instrument(chatService), cacheStore
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) RPCAddr() string {
	return net.JoinHostPort(c.RPCHost, strconv.Itoa(c.RPCPort))
}

// ------------------------------------------------------------------------------------------------------
// NewTransport binds the configured RPC transport
func (c *Config) NewTransport(ctx context.Context, chatService service.ChatService, logger *zap.Logger) (rpc.Transport, error) {
	switch c.Transport {
	case TransportEPC:
		srv, err := epc.NewServer(ctx, c.RPCAddr(), logger)
		if err != nil {
			return nil, err
		}
		epc.RegisterChatService(srv, chatService)
		return srv, nil
	case TransportJSONRPC:
		srv, err := jsonrpc.NewServer(ctx, c.RPCAddr(), chatService, logger)
		if err != nil {
			return nil, err
		}
		return srv, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownTransport, c.Transport)
	}
}

// ------------------------------------------------------------------------------------------------------
// NewHTTPServer builds the optional HTTP gateway; nil when HTTP_ADDR is unset
func (c *Config) NewHTTPServer(chatService service.ChatService, logger *zap.Logger) *http.Server {
	if c.HTTPAddr == "" {
		return nil
	}

	handler := handlers.NewHandler(chatService, logger)
	router := api.SetupRouter(handler, logger)

	return &http.Server{
		Addr:        c.HTTPAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: SSE and websocket streams stay open for a whole reply
		IdleTimeout: 60 * time.Second,
	}
}
