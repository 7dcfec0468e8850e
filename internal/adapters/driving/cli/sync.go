package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the catalog with the website",
	Long: `Reconciles the local catalog against the website's sitemap.

Only one sync runs at a time in a process; the chat bot's admin commands
and the scheduler share the same lock.`,
}

var syncUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch new and changed articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSyncMode(cmd, domain.RunModeIncremental)
	},
}

var syncRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-fetch every article",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSyncMode(cmd, domain.RunModeFull)
	},
}

var syncCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report new and changed articles without fetching",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSyncMode(cmd, domain.RunModeCheck)
	},
}

func init() {
	syncCmd.AddCommand(syncUpdateCmd, syncRebuildCmd, syncCheckCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncMode(cmd *cobra.Command, mode domain.RunMode) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caller := domain.SystemCaller("cli")
	var run func(context.Context, domain.Caller) (*domain.SyncReport, error)
	switch mode {
	case domain.RunModeFull:
		cmd.Println("Rebuilding the library...")
		run = adminService.Rebuild
	case domain.RunModeCheck:
		cmd.Println("Checking the website for changes...")
		run = adminService.Check
	default:
		cmd.Println("Updating the library...")
		run = adminService.Update
	}

	report, err := run(ctx, caller)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, report *domain.SyncReport) {
	s := report.Summary
	cmd.Printf("Status:          %s (%s)\n", s.Status, s.Duration.Round(time.Millisecond))
	cmd.Printf("URLs found:      %d\n", s.URLsFound)
	cmd.Printf("Articles found:  %d\n", s.ArticlesFound)

	if s.Mode == domain.RunModeCheck {
		cmd.Printf("New:             %d\n", s.NewCount)
		cmd.Printf("Changed:         %d\n", s.ChangedCount)
		for _, u := range s.NewURLs {
			cmd.Printf("  + %s\n", u)
		}
		for _, u := range s.ChangedURLs {
			cmd.Printf("  ~ %s\n", u)
		}
	} else {
		cmd.Printf("Selected:        %d\n", s.Selected)
		cmd.Printf("Fetched:         %d (%d ok, %d failed)\n", s.Fetched, s.Succeeded, s.Failed)
		cmd.Printf("Dates from list: %d\n", s.DatesExtracted)
	}
	if s.Error != "" {
		cmd.Printf("Error:           %s\n", s.Error)
	}
	cmd.Println()
	printStats(cmd, report.Stats)
}

func printStats(cmd *cobra.Command, st domain.Stats) {
	cmd.Printf("Library: %d articles, %d categories, %d authors, %d tags (last update %s)\n",
		st.TotalArticles, st.TotalCategories, st.TotalAuthors, st.TotalTags,
		services.FormatLastUpdate(st.LastUpdate))
}

// commandContext returns the command's context, or Background when run
// outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
