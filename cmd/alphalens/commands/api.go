package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphalens/backend/internal/api"
	"github.com/alphalens/backend/internal/api/handlers"
	"github.com/alphalens/backend/internal/plans"
	"github.com/alphalens/backend/internal/scheduler"
	"github.com/alphalens/backend/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET    /health                        - Health check
  POST   /api/recommendations           - Run a recommendation
  GET    /api/recommendations           - List past runs
  GET    /api/recommendations/{run_id}  - Fetch one run
  DELETE /api/recommendations/{run_id}  - Delete a run

Example:
  go run ./cmd/alphalens api
  go run ./cmd/alphalens api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	catalog, err := plans.Load(d.cfg.PlansFile)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}

	recHandler := handlers.NewRecommendationHandler(d.service, catalog, api.Identity, d.log)
	router := api.NewRouter(recHandler, api.MockAuthMiddleware(d.log), d.log)
	server := api.New(d.cfg, d.log, router)

	// Background cache sweep.
	sched := scheduler.New(d.log)
	if err := sched.AddJob(jobs.NewCacheSweep(d.cache, d.log, d.cfg.Cache.SweepInterval)); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	d.log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", d.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
