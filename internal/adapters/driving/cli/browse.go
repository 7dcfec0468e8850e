package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/librarian/internal/adapters/driving/tui"
	"github.com/custodia-labs/librarian/internal/logger"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog in the terminal",
	Long: `Opens an interactive browsing session in the terminal.

Controls:
  c / a / t  - Filter by category, author or tag
  / or s     - Search
  ←/h, →/l   - Previous / next page
  r          - Reset filters
  ?          - Toggle help
  q          - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in browser: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("browser panicked: %v", r)
		}
	}()

	if browseService == nil {
		return errors.New("browse service not configured")
	}

	// Log lines on stderr would tear the alternate screen.
	if cfg == nil || cfg.Log.File == "" {
		logger.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	go func() {
		if err := browseService.Run(ctx); err != nil {
			logger.Warn("session sweeper stopped: %v", err)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(browseService))
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}

	p := tea.NewProgram(app.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}
