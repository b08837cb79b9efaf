package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"chat-shim/internal/config"
	"chat-shim/internal/rpc/jsonrpc"
	"chat-shim/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type askOptions struct {
	addr   string
	stream bool
	chat   string
}

// asker is the part of the RPC surface the ask command needs.
type asker interface {
	Query(ctx context.Context, text string) (string, error)
	QueryStream(ctx context.Context, text string) (string, bool, error)
	SwitchToChat(ctx context.Context, id string) (string, error)
}

func newAskCommand(ctx *commandContext) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Send one query, either in-process or to a running jsonrpc server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			target, closeFn, err := opts.target(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			return runAsk(cmd.Context(), target, opts, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "host:port of a running jsonrpc server (empty runs in-process)")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "Pull the reply chunk by chunk")
	cmd.Flags().StringVar(&opts.chat, "chat", "", "Switch to this conversation before asking")

	return cmd
}

func (o askOptions) target(ctx context.Context, cfg *config.Config) (asker, func(), error) {
	if o.addr != "" {
		client, err := jsonrpc.Dial(o.addr)
		if err != nil {
			return nil, nil, err
		}
		return remoteAsker{client: client}, func() { client.Close() }, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	svc, cache := cfg.NewChatService(ctx, zap.NewNop())
	return svc, func() {
		svc.Close()
		if cache != nil {
			cache.Close()
		}
	}, nil
}

func runAsk(ctx context.Context, target asker, opts askOptions, text string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.chat != "" {
		if _, err := target.SwitchToChat(ctx, opts.chat); err != nil {
			return err
		}
	}

	if !opts.stream {
		reply, err := target.Query(ctx, text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, reply)
		return err
	}

	for {
		chunk, ok, err := target.QueryStream(ctx, text)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if _, err := io.WriteString(out, chunk); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out)
	return err
}

// remoteAsker adapts the jsonrpc client, which carries no context.
type remoteAsker struct {
	client *jsonrpc.Client
}

func (r remoteAsker) Query(_ context.Context, text string) (string, error) {
	return r.client.Query(text)
}

func (r remoteAsker) QueryStream(_ context.Context, text string) (string, bool, error) {
	return r.client.QueryStream(text)
}

func (r remoteAsker) SwitchToChat(_ context.Context, id string) (string, error) {
	return r.client.SwitchToChat(id)
}

var _ asker = service.ChatService(nil)
