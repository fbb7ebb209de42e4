package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation endpoints over HTTP and WebSocket",
		Long: `Serve the generation endpoints over HTTP and WebSocket.

Endpoints:
  POST /api/generate   {"htmlContent": "...", "prompt": "..."}
  GET  /api/ws         same request/response as JSON frames
  GET  /healthz`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := setup(nil)
			if err != nil {
				return err
			}
			defer container.Close()
			defer func() { _ = container.Logger.Sync() }()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container.Logger.Info("Starting server",
				zap.String("version", version),
				zap.Strings("providers", container.Cascade.ProviderNames()),
			)
			return container.NewHTTPServer(addr).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default SERVER_ADDR or :8080)")
	return cmd
}
