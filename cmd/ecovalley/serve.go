package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ecovalley"
	"ecovalley/app"
	"ecovalley/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the material recommendation API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		_, _, otelShutdown, err := ecovalley.InitOtel(ctx)
		if err != nil {
			return fmt.Errorf("init otel: %w", err)
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		a, err := app.New(ctx, cfg, app.Overrides{})
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Error("SETUP: Failed to flush stage log", "error", err)
			}
		}()

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		srv := server.New(a.Coordinator, a.Catalog, server.Options{AllowedOrigins: cfg.AllowedOrigins()})
		return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}
