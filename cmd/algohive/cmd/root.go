package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsiemasilo-dev/algohive/config"
	"github.com/tsiemasilo-dev/algohive/deal"
	"github.com/tsiemasilo-dev/algohive/engine"
	"github.com/tsiemasilo-dev/algohive/marketdata"
	"github.com/tsiemasilo-dev/algohive/store"
	"github.com/tsiemasilo-dev/algohive/terminal"
)

var rootCmd = &cobra.Command{
	Use:   "algohive",
	Short: "Trading strategy performance metrics engine",
	Long: `AlgoHive computes and maintains performance time series for trading
strategies.

It provides tools for:
  - Rebuilding equity ledgers from terminal deal history
  - Aggregating weighted multi-asset return series from daily bars
  - Deriving trailing windows, monthly and calendar returns
  - Scoring risk and stability per strategy
  - Revaluing demo allocations against strategy returns`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var cfgPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "algohive.yaml", "path to config file (YAML or JSON)")
}

// buildEngine wires the store and sources from the config file. The
// caller owns the returned store.
func buildEngine() (*engine.Engine, *store.Store, *config.Config, error) {
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	bars := marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketData.KeyID, cfg.MarketData.SecretKey)

	var deals deal.SessionFactory
	if cfg.Terminal.Enabled {
		deals = terminal.NewClient(cfg.Terminal.BridgeURL, cfg.Terminal.Server,
			cfg.Terminal.Login, cfg.Terminal.Password)
	}

	e := engine.New(st, bars, deals)
	if cfg.Engine.LookbackDays > 0 {
		e.LookbackDays = cfg.Engine.LookbackDays
	}
	return e, st, cfg, nil
}

// openStore opens just the row store, for commands that do not touch
// the sources.
func openStore() (*store.Store, error) {
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
