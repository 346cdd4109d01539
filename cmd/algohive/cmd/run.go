package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run update passes on a fixed interval",
	Long: `Run the metrics engine until interrupted.

Each pass refreshes every strategy's return series and derived metrics,
then revalues the demo allocations. Passes do not overlap; the interval
starts after a pass finishes.

Example:
  algohive run -f algohive.yaml --interval 20m`,
	RunE: runRun,
}

var runInterval time.Duration

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "time between passes (overrides config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	e, st, cfg, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	interval := runInterval
	if interval <= 0 {
		interval, err = cfg.Engine.ParseInterval()
		if err != nil {
			return fmt.Errorf("parse interval: %w", err)
		}
	}
	if interval <= 0 {
		interval = 20 * time.Minute
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running metrics engine (store: %s, interval: %s)\n", cfg.Store.Path, interval)
	err = e.Run(ctx, interval)
	if ctx.Err() != nil {
		fmt.Println("Shutting down")
		return nil
	}
	return err
}
