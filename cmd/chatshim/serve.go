package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-shim/internal/config"
	"chat-shim/internal/logging"
	"chat-shim/internal/rpc"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	transport string
	port      int
	httpAddr  string
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat session over RPC and print the bound port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "RPC transport (epc or jsonrpc)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "RPC port (0 picks a free port)")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "Address for the optional HTTP gateway")

	return cmd
}

func (o serveOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Transport = o.transport
	}
	if flags.Changed("port") {
		cfg.RPCPort = o.port
	}
	if flags.Changed("http-addr") {
		cfg.HTTPAddr = o.httpAddr
	}
	return cfg.Validate()
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logging.Sync()

	logger.Info("Starting chat shim",
		zap.String("backend", cfg.Backend),
		zap.String("transport", cfg.Transport),
		zap.String("cursor_policy", string(cfg.CursorPolicy)),
	)

	chatService, cacheStore := cfg.NewChatService(ctx, logger)
	if cacheStore != nil {
		defer cacheStore.Close()
	}
	defer chatService.Close()

	transport, err := cfg.NewTransport(ctx, chatService, logging.Named("rpc"))
	if err != nil {
		return fmt.Errorf("start RPC server: %w", err)
	}
	defer transport.Close()

	if err := rpc.AnnouncePort(os.Stdout, transport.Addr()); err != nil {
		return fmt.Errorf("announce port: %w", err)
	}
	transport.Serve()
	logger.Info("RPC server listening", zap.String("addr", transport.Addr().String()))

	srv := cfg.NewHTTPServer(chatService, logging.Named("http"))
	if srv != nil {
		go func() {
			logger.Info("HTTP gateway starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP gateway failed", zap.Error(err))
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP gateway forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
	return nil
}
