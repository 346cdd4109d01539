package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent engine passes",
	Long: `List the most recent update passes from the engine_runs audit table,
newest first.

Example:
  algohive runs --limit 10`,
	RunE: runRuns,
}

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of passes to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No passes recorded")
		return nil
	}

	fmt.Printf("%-28s %-22s %10s %12s %12s %8s\n",
		"RUN", "STARTED", "DURATION", "STRATEGIES", "ALLOCATIONS", "ERRORS")
	for _, r := range runs {
		fmt.Printf("%-28s %-22s %10s %12d %12d %8d\n",
			r.RunID,
			r.StartedAt.UTC().Format(time.RFC3339),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.StrategiesUpdated,
			r.AllocationsUpdated,
			r.Errors)
	}
	return nil
}
