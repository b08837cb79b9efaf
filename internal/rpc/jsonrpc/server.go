// Package jsonrpc serves the chat session as a net/rpc service named Chat
// over the JSON-RPC 1.0 codec.
package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	transport "chat-shim/internal/rpc"
	"chat-shim/internal/service"

	"go.uber.org/zap"
)

// ServiceName is the receiver name clients address, as in "Chat.Query".
const ServiceName = "Chat"

// Server exposes the chat session via JSON-RPC over TCP.
type Server struct {
	ln        *transport.Listener
	logger    *zap.Logger
	rpcServer *rpc.Server
}

// NewServer listens on addr and registers svc.
func NewServer(ctx context.Context, addr string, svc service.ChatService, logger *zap.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("jsonrpc server requires a chat service")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "jsonrpc"))

	ln, err := transport.Listen(ctx, addr, logger)
	if err != nil {
		return nil, err
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(ServiceName, &chatReceiver{svc: svc, ctx: ln.Context(), logger: logger}); err != nil {
		ln.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		ln:        ln,
		logger:    logger,
		rpcServer: rpcServer,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve starts accepting RPC connections until Close is called.
func (s *Server) Serve() {
	s.logger.Info("JSON-RPC server listening", zap.String("addr", s.ln.Addr().String()))
	s.ln.Serve(func(c net.Conn) {
		s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
	})
}

// Close stops the listener and drops open connections.
func (s *Server) Close() {
	s.ln.Close()
}
