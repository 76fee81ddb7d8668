package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daftar/storefront/exchange"
	"github.com/daftar/storefront/logging"
)

var importYes bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace a collection from a JSON document",
	Long: `Import reads a JSON document in any of the historical interchange
formats, decides whether it holds invoices or products, and replaces
that collection wholesale. The current contents are lost; pass --yes
to skip the confirmation prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "replace without confirmation")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logging.WithComponent("import")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := exchange.Parse(data, time.Now())
	if err != nil {
		return err
	}

	if !importYes {
		fmt.Printf("Replace %s with %d record(s) from %s? [y/N] ", res.Kind, res.Count(), args[0])
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return nil
		}
	}

	st, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	switch res.Kind {
	case exchange.KindInvoices:
		err = st.Invoices.ImportAll(cmd.Context(), res.Invoices)
	case exchange.KindProducts:
		err = st.Products.ImportAll(cmd.Context(), res.Products)
	}
	if err != nil {
		return err
	}

	log.Info().Str("kind", string(res.Kind)).Int("count", res.Count()).Msg("collection replaced")
	fmt.Printf("imported %d %s\n", res.Count(), res.Kind)
	return nil
}
