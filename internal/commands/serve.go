package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat over HTTP and WebSocket",
		Long: `Serve one shared chat session to browser clients.

Endpoints:
  GET  /api/state                      Current snapshot
  POST /api/messages                   Submit a question (202, or 409 while busy)
  POST /api/clear                      Clear the history
  PUT  /api/language                   Switch language ({"language":"da"})
  POST /api/categories/:name/toggle    Toggle a category filter
  GET  /ws                             Stream snapshots, accept commands`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.ServerAddr
			}
			if !strings.Contains(addr, ":") {
				return fmt.Errorf("invalid listen address %q (want host:port)", addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runServe(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	return cmd
}

// runServe serves until ctx ends, then shuts the server down and waits for
// the pending reply.
func (c *cli) runServe(ctx context.Context, addr string) error {
	logger := c.logger
	if !c.verbose && !c.cfg.Verbose {
		l, err := newLogger(zapcore.InfoLevel)
		if err != nil {
			return err
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}

	store := conversation.New(c.storeOptions(conversation.WithLogger(logger.Named("store")))...)
	srv := server.New(store, server.WithLogger(logger.Named("http")))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return srv.Shutdown()
	})

	err := g.Wait()
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
