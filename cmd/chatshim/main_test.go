package main

import (
	"bytes"
	"context"
	"testing"

	"chat-shim/internal/config"
	"chat-shim/internal/rpc/jsonrpc"
	"chat-shim/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func echoConfig() *config.Config {
	return &config.Config{
		Backend:      config.BackendEcho,
		MaxExchanges: 10,
		Transport:    config.TransportJSONRPC,
		RPCHost:      "127.0.0.1",
		CursorPolicy: service.CursorKeep,
	}
}

func TestRunAskInProcess(t *testing.T) {
	target, closeFn, err := askOptions{}.target(context.Background(), echoConfig())
	require.NoError(t, err)
	defer closeFn()

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), target, askOptions{}, "hello there", &out))
	require.Equal(t, "hello there\n", out.String())

	out.Reset()
	require.NoError(t, runAsk(context.Background(), target, askOptions{stream: true, chat: "notes"}, "one two three", &out))
	require.Equal(t, "one two three\n", out.String())
}

func TestRunAskRemote(t *testing.T) {
	cfg := echoConfig()
	svc, _ := cfg.NewChatService(context.Background(), zap.NewNop())

	srv, err := jsonrpc.NewServer(context.Background(), cfg.RPCAddr(), svc, zap.NewNop())
	require.NoError(t, err)
	defer srv.Close()
	srv.Serve()

	target, closeFn, err := askOptions{addr: srv.Addr().String()}.target(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), target, askOptions{stream: true}, "over the wire", &out))
	require.Equal(t, "over the wire\n", out.String())
}

func TestServeOptionsApply(t *testing.T) {
	cmd := newServeCommand(newCommandContext())
	require.NoError(t, cmd.Flags().Parse([]string{"--transport", "jsonrpc", "--port", "4567"}))

	cfg := echoConfig()
	cfg.Transport = config.TransportEPC
	cfg.HTTPAddr = ":8080"

	opts := serveOptions{transport: "jsonrpc", port: 4567}
	require.NoError(t, opts.apply(cmd, cfg))
	require.Equal(t, config.TransportJSONRPC, cfg.Transport)
	require.Equal(t, 4567, cfg.RPCPort)
	require.Equal(t, ":8080", cfg.HTTPAddr, "unset flag must not override config")

	require.NoError(t, cmd.Flags().Parse([]string{"--transport", "pigeon"}))
	require.Error(t, serveOptions{transport: "pigeon"}.apply(cmd, cfg))
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "ask"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
	require.NotNil(t, root.Flags().Lookup("transport"))
}
