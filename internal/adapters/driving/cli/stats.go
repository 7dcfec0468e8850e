package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

var statsRuns int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long: `Shows article, category, author and tag counts. With --runs, also lists
the most recent sync runs.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRuns, "runs", 0, "number of recent sync runs to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx := commandContext(cmd)
	caller := domain.SystemCaller("cli")

	st, err := adminService.Stats(ctx, caller)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}
	printStats(cmd, st)

	if statsRuns <= 0 {
		return nil
	}
	runs, err := adminService.RecentRuns(ctx, caller, statsRuns)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	cmd.Println()
	if len(runs) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}
	cmd.Println("Recent runs:")
	for _, r := range runs {
		cmd.Printf("  %s  %-11s %-7s %4d selected %4d ok %4d failed  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Status,
			r.Selected, r.Succeeded, r.Failed, r.Duration.Round(time.Second))
		if r.Error != "" {
			cmd.Printf("      error: %s\n", r.Error)
		}
	}
	return nil
}
