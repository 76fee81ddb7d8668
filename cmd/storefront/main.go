/*
main.go - Application entry point

PURPOSE:
  Initializes configuration and logging, then hands control to the
  cobra command tree.

STARTUP SEQUENCE:
  1. Load .env (optional, local development convenience)
  2. Load configuration from the environment
  3. Initialize the global logger
  4. Execute the selected subcommand

SEE ALSO:
  - root.go: Command tree and shared flags
  - serve.go: HTTP server lifecycle
*/
package main

import (
	"github.com/joho/godotenv"

	"github.com/daftar/storefront/config"
	"github.com/daftar/storefront/logging"
)

func main() {
	// Missing .env is fine; the environment wins anyway.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	Execute(cfg)
}
