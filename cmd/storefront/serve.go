/*
serve.go - HTTP server lifecycle

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database
  4. Exit
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/daftar/storefront/api"
	"github.com/daftar/storefront/backup"
	"github.com/daftar/storefront/logging"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides STOREFRONT_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.WithComponent("server")

	st, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	backups := backup.NewService(st, backup.NewMemoryProvider(), backup.WithLogger(log))
	handler := api.NewHandler(st, backups, log)
	router := api.NewRouter(handler)

	port := cfg.Port
	if servePort != 0 {
		port = servePort
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
