package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "chatshim",
		Short:         "Local RPC shim for a chat session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
	}

	serveCmd := newServeCommand(ctx)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newAskCommand(ctx))

	// Editors spawn the binary without arguments and read the port line.
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	return rootCmd
}
