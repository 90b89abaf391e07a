package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsumm/internal/api"
	"github.com/dgallion1/docsumm/internal/config"
	"github.com/dgallion1/docsumm/internal/pipeline"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP job API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			if err := cfg.ValidateServer(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			deps, closeClient, err := newDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeClient()

			orch := pipeline.NewOrchestrator(cfg, deps, log)
			orch.Start(ctx)

			srv := api.NewServer(orch, log, cfg)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  60 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown. The HTTP server stops accepting uploads before
			// the orchestrator drains, and RunE returns only after the drain.
			done := make(chan struct{})
			go func() {
				defer close(done)
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)

				orch.Stop()
				log.Info("workers stopped")
			}()

			log.Info("starting docsumm", "port", cfg.Port, "provider", cfg.Provider,
				"model", cfg.Model, "workers", cfg.WorkerCount)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				orch.Stop()
				return fmt.Errorf("server error: %w", err)
			}
			<-done
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default: PORT or 8090)")
	return cmd
}
