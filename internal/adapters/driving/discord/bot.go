package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/logger"
)

// Options configures the bot connection.
type Options struct {
	Token string

	// AppID defaults to the bot user's ID once connected.
	AppID string

	// GuildID registers commands on one guild only. Empty registers them
	// globally, which can take up to an hour to propagate.
	GuildID string
}

// Bot connects the library services to the chat platform.
type Bot struct {
	session *discordgo.Session
	api     API
	browse  driving.BrowseService
	admin   driving.AdminService
	opts    Options

	// ctx is the lifetime of Run; handlers run under it.
	ctx context.Context

	// surfaces holds the open library messages by surface ID.
	surfaces sync.Map
}

// New creates a bot. It does not connect until Run.
func New(opts Options, browse driving.BrowseService, admin driving.AdminService) (*Bot, error) {
	if opts.Token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := newBot(session, browse, admin, opts)
	b.session = session
	session.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		b.handle(b.ctx, ic.Interaction)
	})
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logger.Info("Connected to Discord as %s", r.User.Username)
	})
	return b, nil
}

func newBot(api API, browse driving.BrowseService, admin driving.AdminService, opts Options) *Bot {
	return &Bot{
		api:    api,
		browse: browse,
		admin:  admin,
		opts:   opts,
		ctx:    context.Background(),
	}
}

// Run connects, registers the slash commands and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.session == nil {
		return errors.New("bot has no session")
	}
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			logger.Warn("Closing Discord session: %v", err)
		}
	}()

	appID := b.opts.AppID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.opts.GuildID, commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	logger.Info("Registered %d slash commands", len(registered))

	<-ctx.Done()
	logger.Info("Discord bot stopping")
	return nil
}

// forget drops a surface once its session has ended.
func (b *Bot) forget(surfaceID string) {
	b.surfaces.Delete(surfaceID)
}
