package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Listener accepts TCP connections and serves each one on its own goroutine.
// Close stops accepting, drops open connections and waits for their handlers.
type Listener struct {
	listener net.Listener
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// Listen binds addr. Use port 0 to let the OS choose.
func Listen(ctx context.Context, addr string, logger *zap.Logger) (*Listener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	listenerCtx, cancel := context.WithCancel(ctx)
	return &Listener{
		listener: listener,
		logger:   logger,
		ctx:      listenerCtx,
		cancel:   cancel,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Context is cancelled when the listener closes.
func (l *Listener) Context() context.Context {
	return l.ctx
}

func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Serve starts the accept loop. serveConn owns the connection until it
// returns; the listener closes it afterwards.
func (l *Listener) Serve(serveConn func(net.Conn)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			conn, err := l.listener.Accept()
			if err != nil {
				select {
				case <-l.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				l.logger.Warn("Accept failed", zap.Error(err))
				continue
			}
			if !l.track(conn, true) {
				return
			}
			l.wg.Add(1)
			go func(c net.Conn) {
				defer l.wg.Done()
				defer l.track(c, false)
				serveConn(c)
			}(conn)
		}
	}()
}

func (l *Listener) Close() {
	l.cancel()
	_ = l.listener.Close()

	l.connMu.Lock()
	for c := range l.conns {
		_ = c.Close()
	}
	l.connMu.Unlock()

	l.wg.Wait()
}

// track records open connections so Close can drop them. It refuses new
// connections once the listener is shutting down.
func (l *Listener) track(c net.Conn, open bool) bool {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	if open && l.ctx.Err() == nil {
		l.conns[c] = struct{}{}
		return true
	}
	delete(l.conns, c)
	_ = c.Close()
	return false
}
