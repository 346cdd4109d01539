package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsiemasilo-dev/algohive/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an account's equity ledger as CSV",
	Long: `Rebuild an account's equity ledger from the terminal deal history and
write it as CSV.

The first row is the synthetic starting balance; every following row is
a balance operation or a closed position with the running balance after
applying it.

Example:
  algohive export -f algohive.yaml --account ACC-1 -o ledger.csv`,
	RunE: runExport,
}

var (
	exportAccount string
	exportOutput  string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportAccount, "account", "a", "", "account identifier (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.MarkFlagRequired("account")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, st, cfg, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	if !cfg.Terminal.Enabled {
		return fmt.Errorf("export needs the terminal section enabled in %s", cfgPath)
	}

	start, rows, err := e.Ledger(cmd.Context(), exportAccount)
	if err != nil {
		return fmt.Errorf("build ledger: %w", err)
	}

	out := os.Stdout
	if exportOutput != "" {
		out, err = os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	if err := ledger.WriteCSV(out, exportAccount, start, rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if exportOutput != "" {
		fmt.Printf("Wrote %d ledger rows to %s\n", len(rows), exportOutput)
	}
	return nil
}
