package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spantower/internal/server"
	"github.com/matzehuels/spantower/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the HTTP layout server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		sessionsDir string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

POST a document payload to /v1/layout to receive its layout model and
messages. Sessions created with POST /v1/sessions hold a collection and
visual configuration and are selected with ?session=<id>.

The cache backend is chosen with SPANTOWER_CACHE (file, redis, mongo, none).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, sessionsDir, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", env("ADDR", ":8080"), "listen address")
	cmd.Flags().StringVar(&sessionsDir, "sessions", env("SESSIONS_DIR", ""), "persist sessions in this directory (default: in memory)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, sessionsDir string, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var store session.Store = session.NewMemoryStore()
	if sessionsDir != "" {
		fs, err := session.NewFileStore(sessionsDir)
		if err != nil {
			return err
		}
		store = fs
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, store, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
