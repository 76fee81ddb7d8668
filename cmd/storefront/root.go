package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daftar/storefront/config"
	"github.com/daftar/storefront/logging"
	"github.com/daftar/storefront/record"
	"github.com/daftar/storefront/store/sqlitekv"
)

var version = "1.0.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront ledger - invoices, payments, and customer balances",
	Long: `Storefront keeps a small shop's books: composed invoices, standalone
payments, a product catalog, and the running balance each customer owes.

Data lives in a single SQLite file. Use "serve" to expose the REST API,
or "export"/"import" to move collections as JSON documents.`,
	Version: version,
}

// Execute runs the command tree with the loaded configuration.
func Execute(c *config.Config) {
	cfg = c

	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (\":memory:\" for ephemeral)")
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for file exports")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace..error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the SQLite-backed record store. The returned close
// func must run before exit.
func openStore(cmd *cobra.Command) (*record.Store, func(), error) {
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.WithComponent("store")

	kv, err := sqlitekv.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	st := record.Open(cmd.Context(), kv, record.WithLogger(log))
	return st, func() { kv.Close() }, nil
}
