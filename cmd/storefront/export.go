package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/daftar/storefront/exchange"
	"github.com/daftar/storefront/logging"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:       "export {invoices|products}",
	Short:     "Write a collection to a JSON document",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"invoices", "products"},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <data-dir>/<collection>.json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logging.WithComponent("export")

	st, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	var doc []byte
	switch args[0] {
	case "invoices":
		doc, err = exchange.ExportInvoices(st.Invoices.List(), time.Now())
	case "products":
		doc, err = exchange.ExportProducts(st.Products.List(), time.Now())
	default:
		return fmt.Errorf("unknown collection %q", args[0])
	}
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return err
		}
		out = filepath.Join(cfg.DataDir, args[0]+".json")
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return err
	}

	log.Info().Str("file", out).Str("collection", args[0]).Msg("export written")
	fmt.Println(out)
	return nil
}
