package epc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/rpc"

	"go.uber.org/zap"
)

// Handler serves one remote procedure. The returned value must be encodable
// by Marshal.
type Handler func(ctx context.Context, args []any) (any, error)

type method struct {
	name    string
	argSpec string
	doc     string
	handler Handler
}

// Server accepts EPC connections and dispatches calls to registered methods.
// Calls on one connection are handled in order.
type Server struct {
	ln     *rpc.Listener
	logger *zap.Logger

	mu      sync.RWMutex
	methods map[string]method
	order   []string
}

// NewServer listens on addr. Use port 0 to let the OS choose.
func NewServer(ctx context.Context, addr string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "epc"))

	ln, err := rpc.Listen(ctx, addr, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		ln:      ln,
		logger:  logger,
		methods: make(map[string]method),
	}, nil
}

// Register exposes h as name. argSpec and doc are reported by (methods UID).
func (s *Server) Register(name, argSpec, doc string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.methods[name]; !exists {
		s.order = append(s.order, name)
	}
	s.methods[name] = method{name: name, argSpec: argSpec, doc: doc, handler: h}
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve starts accepting connections until Close is called.
func (s *Server) Serve() {
	s.logger.Info("EPC server listening", zap.String("addr", s.ln.Addr().String()))
	s.ln.Serve(s.serveConn)
}

// Close stops accepting, drops open connections and waits for handlers.
func (s *Server) Close() {
	s.ln.Close()
}

func (s *Server) serveConn(conn net.Conn) {
	logger := s.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	logger.Debug("Connection opened")

	r := bufio.NewReader(conn)
	for {
		msg, err := ReadMessage(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && s.ln.Context().Err() == nil {
				logger.Warn("Failed to read message", zap.Error(err))
			}
			logger.Debug("Connection closed")
			return
		}

		reply := s.dispatch(logger, msg)
		if reply == nil {
			continue
		}
		if err := WriteMessage(conn, reply); err != nil {
			logger.Warn("Failed to write reply", zap.Error(err))
			return
		}
	}
}

// dispatch turns one request into its reply. A nil reply means nothing is sent.
func (s *Server) dispatch(logger *zap.Logger, msg any) []any {
	list, ok := msg.([]any)
	if !ok || len(list) < 2 {
		logger.Warn("Dropping malformed message", zap.Any("message", msg))
		return nil
	}
	kind, _ := list[0].(Symbol)
	uid := list[1]

	switch kind {
	case "call":
		if len(list) < 3 {
			return []any{Symbol("epc-error"), uid, "malformed call"}
		}
		return s.call(logger, uid, list[2], argList(list))
	case "methods":
		return []any{Symbol("return"), uid, s.describe()}
	case "return", "return-error", "epc-error":
		// This server never calls the peer, so there is nothing to resolve.
		logger.Debug("Ignoring unsolicited reply", zap.String("kind", string(kind)))
		return nil
	default:
		return []any{Symbol("epc-error"), uid, fmt.Sprintf("unknown message type: %v", list[0])}
	}
}

func argList(list []any) []any {
	if len(list) < 4 || list[3] == nil {
		return nil
	}
	if args, ok := list[3].([]any); ok {
		return args
	}
	return []any{list[3]}
}

func (s *Server) call(logger *zap.Logger, uid, name any, args []any) []any {
	methodName := fmt.Sprint(name)

	s.mu.RLock()
	m, ok := s.methods[methodName]
	s.mu.RUnlock()
	if !ok {
		logger.Warn("Unknown method", zap.String("method", methodName))
		return []any{Symbol("epc-error"), uid, fmt.Sprintf("%v: %s", apperror.ErrUnknownMethod, methodName)}
	}

	result, err := m.handler(s.ln.Context(), args)
	if err != nil {
		logger.Error("Call failed", zap.String("method", methodName), zap.Error(err))
		return []any{Symbol("return-error"), uid, apperror.Cause(err).Error()}
	}
	return []any{Symbol("return"), uid, result}
}

func (s *Server) describe() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]any, 0, len(s.order))
	for _, name := range s.order {
		m := s.methods[name]
		var argSpec any
		if m.argSpec != "" {
			argSpec = m.argSpec
		}
		out = append(out, []any{Symbol(m.name), argSpec, m.doc})
	}
	return out
}
