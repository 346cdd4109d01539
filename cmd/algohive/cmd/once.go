package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single update pass",
	Long: `Run one full update pass over every strategy and allocation, then exit.

The pass is recorded in the engine_runs audit table. A non-zero exit
only indicates the pass could not start; per-entity failures are
counted and reported.

Example:
  algohive once -f algohive.yaml`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	e, st, _, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := e.RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("run pass: %w", err)
	}

	fmt.Printf("Run %s finished in %s\n", run.RunID, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Printf("  Strategies updated:  %d\n", run.StrategiesUpdated)
	fmt.Printf("  Allocations updated: %d\n", run.AllocationsUpdated)
	fmt.Printf("  Errors:              %d\n", run.Errors)
	return nil
}
