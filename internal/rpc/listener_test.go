package rpc

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListener_ServesEachConnection(t *testing.T) {
	l, err := Listen(context.Background(), "127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(l.Close)

	l.Serve(func(c net.Conn) {
		line, err := bufio.NewReader(c).ReadString('\n')
		if err != nil {
			return
		}
		_, _ = c.Write([]byte("echo " + line))
	})

	for _, msg := range []string{"one\n", "two\n"} {
		conn, err := net.Dial("tcp", l.Addr().String())
		require.NoError(t, err)
		_, err = conn.Write([]byte(msg))
		require.NoError(t, err)

		reply, err := bufio.NewReader(conn).ReadString('\n')
		require.NoError(t, err)
		require.Equal(t, "echo "+msg, reply)
		conn.Close()
	}
}

func TestListener_CloseDropsOpenConnections(t *testing.T) {
	l, err := Listen(context.Background(), "127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)

	started := make(chan struct{})
	l.Serve(func(c net.Conn) {
		close(started)
		// Blocks until Close drops the connection
		_, _ = bufio.NewReader(c).ReadString('\n')
	})

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	<-started

	done := make(chan struct{})
	go func() {
		l.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return with an open connection")
	}
	require.Error(t, l.Context().Err())
}

func TestListen_BadAddress(t *testing.T) {
	_, err := Listen(context.Background(), "127.0.0.1:-1", nil)
	require.Error(t, err)
}
