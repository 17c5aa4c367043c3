package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alphalens/backend/internal/scheduler"
	"github.com/alphalens/backend/internal/scheduler/jobs"
)

// schedulerCmd runs the maintenance scheduler standalone, for
// deployments where the API server and background jobs are separated.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the maintenance scheduler",
	Long: `Run the background maintenance scheduler standalone.

Jobs:
  cache_sweep - evicts expired provider cache entries

Example:
  go run ./cmd/alphalens scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	sched := scheduler.New(d.log)
	if err := sched.AddJob(jobs.NewCacheSweep(d.cache, d.log, d.cfg.Cache.SweepInterval)); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}

	sched.Start()
	fmt.Println("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
