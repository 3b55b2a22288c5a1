package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/topicserver"
)

// shutdownTimeout bounds how long in-flight requests may take after a stop signal.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve-topics command.
type ServeOptions struct {
	*RootOptions
	Database string   // overrides STOREFRONT_DB
	Addr     string   // overrides STOREFRONT_ADDR
	Origins  []string // CORS origins; empty allows any

	// OnListen is called with the bound address once the server accepts
	// connections (for testing).
	OnListen func(addr string)
}

// NewServeTopicsCommand creates the serve-topics command.
func NewServeTopicsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve-topics",
		Short: "Serve a topic collection backed by SQLite",
		Long: `Serve the topic collection API for local development.

Topics are stored in a SQLite database, created if it doesn't exist.
The server stops gracefully on SIGINT or SIGTERM.

Example:
  storefront serve-topics
  storefront serve-topics --db ./topics.db --addr 127.0.0.1:9090 --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveTopics(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address")
	cmd.Flags().StringSliceVar(&opts.Origins, "allowed-origin", nil, "CORS origin to allow (repeatable)")

	return cmd
}

func serveTopics(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	logger.Info("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	var serverOpts []topicserver.Option
	if len(opts.Origins) > 0 {
		serverOpts = append(serverOpts, topicserver.WithAllowedOrigins(opts.Origins...))
	}
	srv := &http.Server{
		Handler:           topicserver.New(st, logger, serverOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	logger.Info("topic server listening", "addr", addr, "db", cfg.DBPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving topics on http://%s\n", addr)
	if opts.OnListen != nil {
		opts.OnListen(addr)
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}

	logger.Info("topic server stopped gracefully")
	return nil
}
