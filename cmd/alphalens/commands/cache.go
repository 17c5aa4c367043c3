package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd groups cache maintenance subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Provider cache maintenance",
}

// cacheSweepCmd evicts expired entries once.
var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evict expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		removed, err := d.cache.ClearExpired(ctx)
		if err != nil {
			return fmt.Errorf("cache sweep failed: %w", err)
		}

		fmt.Printf("Removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
}
