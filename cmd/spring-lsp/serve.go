package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the LSP server over stdio until the client sends exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			logging.Info(logging.CategoryServer, "received shutdown signal", nil)
			cancel()
		}()

		srv := server.New(os.Stdin, os.Stdout, cfg)
		logging.Info(logging.CategoryServer, "spring-lsp ready on stdio", map[string]any{"version": version})
		if err := srv.Serve(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}
