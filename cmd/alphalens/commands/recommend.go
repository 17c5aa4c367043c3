package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/internal/plans"
	"github.com/alphalens/backend/internal/recommend"
)

// recommendCmd runs one recommendation from the command line.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run a recommendation once",
	Long: `Run the recommendation pipeline once and print the result as JSON.

Example:
  go run ./cmd/alphalens recommend --tickers AAPL,MSFT,GOOGL --horizon 1M
  go run ./cmd/alphalens recommend --tickers NVDA --horizon 1W --plan pro`,
	RunE: runRecommend,
}

var (
	recTickers string
	recHorizon string
	recPlan    string
	recUser    string
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recTickers, "tickers", "", "comma-separated ticker symbols (required)")
	recommendCmd.Flags().StringVar(&recHorizon, "horizon", string(contracts.HorizonOneMonth), "investment horizon (1W, 1M, 3M, 6M, 1Y)")
	recommendCmd.Flags().StringVar(&recPlan, "plan", "pro", "plan to evaluate limits against")
	recommendCmd.Flags().StringVar(&recUser, "user", "cli", "user ID to attribute the run to")
	recommendCmd.MarkFlagRequired("tickers")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	catalog, err := plans.Load(d.cfg.PlansFile)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}

	result, err := d.service.Run(ctx, recommend.Request{
		UserID:     recUser,
		Tickers:    strings.Split(recTickers, ","),
		Horizon:    recHorizon,
		PlanLimits: catalog.Limits(recPlan),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
