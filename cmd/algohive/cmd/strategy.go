package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsiemasilo-dev/algohive/engine"
	"github.com/tsiemasilo-dev/algohive/portfolio"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Register and inspect strategies",
	Long: `Manage the strategies tracked by the engine.

Subcommands:
  add  - Register a strategy or refresh its identity fields
  list - List tracked strategies

Examples:
  algohive strategy add --id alpha --source bars --holdings holdings.json
  algohive strategy add --id live-1 --source terminal --account ACC-1
  algohive strategy list`,
}

var strategyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a strategy",
	Long: `Register a strategy, or refresh its account, data source and holdings.
Previously computed metrics are left untouched.

A bars strategy needs a holdings file: a JSON array of holdings with
symbol and weight_pct fields. A terminal strategy needs an account.`,
	RunE: runStrategyAdd,
}

var strategyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked strategies",
	RunE:  runStrategyList,
}

var (
	strategyID       string
	strategyAccount  string
	strategySource   string
	strategyHoldings string
)

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyAddCmd)
	strategyCmd.AddCommand(strategyListCmd)

	strategyAddCmd.Flags().StringVar(&strategyID, "id", "", "strategy identifier (required)")
	strategyAddCmd.Flags().StringVar(&strategyAccount, "account", "", "terminal account identifier")
	strategyAddCmd.Flags().StringVar(&strategySource, "source", engine.DataSourceBars, "data source: bars or terminal")
	strategyAddCmd.Flags().StringVar(&strategyHoldings, "holdings", "", "path to holdings JSON file")
	strategyAddCmd.MarkFlagRequired("id")
}

func runStrategyAdd(cmd *cobra.Command, args []string) error {
	if strategySource != engine.DataSourceBars && strategySource != engine.DataSourceTerminal {
		return fmt.Errorf("source must be %q or %q", engine.DataSourceBars, engine.DataSourceTerminal)
	}
	if strategySource == engine.DataSourceTerminal && strategyAccount == "" {
		return fmt.Errorf("terminal strategies need --account")
	}

	var holdings []portfolio.Holding
	if strategyHoldings != "" {
		data, err := os.ReadFile(strategyHoldings)
		if err != nil {
			return fmt.Errorf("read holdings file: %w", err)
		}
		if err := json.Unmarshal(data, &holdings); err != nil {
			return fmt.Errorf("parse holdings file: %w", err)
		}
	}
	if strategySource == engine.DataSourceBars && len(portfolio.Weights(holdings)) == 0 {
		return fmt.Errorf("bars strategies need --holdings with at least one positive weight")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpsertStrategy(strategyID, strategyAccount, strategySource, holdings); err != nil {
		return fmt.Errorf("upsert strategy: %w", err)
	}

	fmt.Printf("✓ Strategy %s registered (source: %s, holdings: %d)\n",
		strategyID, strategySource, len(holdings))
	return nil
}

func runStrategyList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.ListStrategies()
	if err != nil {
		return fmt.Errorf("list strategies: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("No strategies registered")
		return nil
	}

	fmt.Printf("%-20s %-10s %-12s %-12s %s\n", "STRATEGY", "SOURCE", "ACCOUNT", "AS OF", "POINTS")
	for _, r := range rows {
		fmt.Printf("%-20s %-10s %-12s %-12s %d\n",
			r.StrategyID, r.DataSource, r.Account, r.AsOfDate, len(r.SeriesAll))
	}
	return nil
}
