package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/librarian/internal/adapters/driving/discord"
	"github.com/custodia-labs/librarian/internal/config"
	"github.com/custodia-labs/librarian/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat bot",
	Long: `Connects to Discord and serves the library to readers.

Also runs the idle-session sweeper, the scheduled sync when
sync.schedule_interval is set, the metrics endpoint when metrics.addr is
set, and reloads admin roles when the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if cfg == nil || application == nil {
		return errors.New("services not configured")
	}
	if err := cfg.RequireDiscord(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := discord.New(discord.Options{
		Token:   cfg.Discord.Token,
		AppID:   cfg.Discord.AppID,
		GuildID: cfg.Discord.GuildID,
	}, browseService, adminService)
	if err != nil {
		return err
	}

	if !libraryService.Healthy(ctx) {
		logger.Warn("Catalog is empty: run 'librarian sync rebuild' or /rebuild-library")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return browseService.Run(gctx) })
	g.Go(func() error { return scheduler.Start(gctx) })
	if cfg.Metrics.Addr != "" {
		g.Go(func() error { return application.Metrics.Serve(gctx, cfg.Metrics.Addr) })
	}
	if path := cfg.Path(); path != "" {
		if _, err := os.Stat(path); err == nil {
			g.Go(func() error { return config.Watch(gctx, path, application.Reload) })
		}
	}
	g.Go(func() error { return bot.Run(gctx) })

	logger.Info("Librarian serving (version %s)", version)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
