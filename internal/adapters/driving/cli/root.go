// Package cli implements the librarian command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/librarian/internal/app"
	"github.com/custodia-labs/librarian/internal/config"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Flags shared by every command.
var (
	cfgFile     string
	verbose     bool
	memoryStore bool
)

// Services wired by setup. Tests assign them directly.
var (
	cfg            *config.Config
	application    *app.App
	libraryService driving.LibraryService
	adminService   driving.AdminService
	browseService  driving.BrowseService
	scheduler      driving.Scheduler
)

var rootCmd = &cobra.Command{
	Use:   "librarian",
	Short: "Browse and maintain the digital library catalog",
	Long: `Librarian keeps a local catalog of the digital library's articles in
sync with the website and serves it to readers.

Run 'librarian serve' to start the chat bot, 'librarian sync update' to
refresh the catalog, or 'librarian browse' to explore it in the terminal.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.librarian/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&memoryStore, "memory", false, "keep the catalog in memory (nothing is saved)")
}

// Execute runs the root command. Command output goes to stdout so it can be piped.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

// needsServices reports whether cmd touches the catalog.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

// setup loads configuration and wires the services once per process.
func setup(cmd *cobra.Command, _ []string) error {
	if !needsServices(cmd) || libraryService != nil {
		return nil
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logger.Setup(logger.Options{
		Level:   loaded.Log.Level,
		File:    loaded.Log.File,
		Format:  loaded.Log.Format,
		Verbose: verbose,
	}); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	a, err := app.New(loaded, app.Options{Memory: memoryStore})
	if err != nil {
		return err
	}
	cfg = loaded
	application = a
	libraryService = a.Catalog
	adminService = a.Admin
	browseService = a.Browse
	scheduler = a.Scheduler
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	libraryService, adminService, browseService, scheduler = nil, nil, nil, nil
	return errors.Join(err, logger.Close())
}
