package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/talkweave"
	"github.com/aretw0/talkweave/internal/presentation/tui"
	httpAdapter "github.com/aretw0/talkweave/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/talkweave/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves generation, traceback and search as a JSON API, with Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		addr := a.cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		srv := &http.Server{
			Addr: addr,
			Handler: httpAdapter.NewHandler(a.gen,
				httpAdapter.WithMetrics(a.registry),
				httpAdapter.WithLogger(a.logger),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(talkweave.Version))
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("HTTP server listening", "address", addr, "data", a.cfg.Data.Path)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			a.logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			return nil
		}
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long:  `Exposes generation as Model Context Protocol tools over stdio, or over SSE with --sse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		srv := mcpAdapter.NewServer(a.gen, mcpAdapter.WithLogger(a.logger))

		sseAddr, _ := cmd.Flags().GetString("sse")
		if sseAddr == "" {
			return srv.ServeStdio()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		baseURL, _ := cmd.Flags().GetString("base-url")
		if baseURL == "" {
			baseURL = "http://localhost" + sseAddr
		}
		return srv.ServeSSE(ctx, sseAddr, baseURL)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio (e.g. :8081)")
	mcpCmd.Flags().String("base-url", "", "Public base URL of the SSE server")
	rootCmd.AddCommand(serveCmd, mcpCmd)
}
