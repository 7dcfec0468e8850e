package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
	"github.com/custodia-labs/librarian/internal/logger"
)

// recentRunsShown is the number of run log entries on the stats embed.
const recentRunsShown = 5

// handle routes one interaction.
func (b *Bot) handle(ctx context.Context, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(ctx, i)
	}
}

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	name := i.ApplicationCommandData().Name
	logger.Debug("Command /%s from %s", name, callerOf(b.api, i, false).Name)

	switch name {
	case cmdLibrary:
		b.openLibrary(ctx, i)
	case cmdStats:
		b.showStats(ctx, i)
	case cmdUpdate:
		b.runAdmin(ctx, i, "Starting incremental update...", "✅ Library Update Complete", b.admin.Update)
	case cmdRebuild:
		b.runAdmin(ctx, i, "Starting full rebuild... this may take several minutes.", "✅ Library Rebuild Complete", b.admin.Rebuild)
	case cmdCheck:
		b.runAdmin(ctx, i, "Checking the site for changes...", "🔎 Library Check", b.admin.Check)
	default:
		logger.Warn("Unknown command /%s", name)
	}
}

// openLibrary starts a browsing session on a new ephemeral message.
func (b *Bot) openLibrary(ctx context.Context, i *discordgo.Interaction) {
	caller := callerOf(b.api, i, false)
	surface := newMessageSurface(b.api, i, b.forget)

	view, err := b.browse.Open(ctx, caller, surface)
	if err != nil {
		logger.Warn("Library open failed for %s: %v", caller.Name, err)
		msg := services.NoticeRetry
		if errors.Is(err, domain.ErrStoreUnavailable) {
			msg = services.NoticeStoreUnavailable
		}
		b.respondEphemeral(i, noticeEmbed("❌ Library Unavailable", msg, colorError))
		return
	}
	b.surfaces.Store(surface.ID(), surface)

	embed, components := surface.render(view)
	if err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		logger.Warn("Library message failed for %s: %v", caller.Name, err)
		b.browse.Close(surface.ID())
		b.forget(surface.ID())
	}
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	data := i.MessageComponentData()
	surfaceID, action, ok := parseCustomID(data.CustomID)
	if !ok {
		logger.Debug("Ignoring component %q", data.CustomID)
		return
	}

	var event domain.Event
	switch action {
	case actionCategory, actionAuthor, actionTag:
		value, ok := b.selection(surfaceID, action, data.Values)
		if !ok {
			logger.Debug("Stale %s option on %s", action, surfaceID)
			b.respondEphemeral(i, noticeEmbed("⏰ Library Session Expired", services.NoticeSessionExpired, colorWarning))
			return
		}
		event = selectEvent(action, value)
	case actionReset:
		event = domain.ResetEvent()
	case actionPrev:
		event = domain.PrevPage()
	case actionNext:
		event = domain.NextPage()
	case actionSearch:
		// Opening the modal is the answer to this interaction; the session
		// sees the search only when the modal is submitted.
		if err := b.api.InteractionRespond(i, searchModal(surfaceID, "")); err != nil {
			logger.Warn("Search modal failed on %s: %v", surfaceID, err)
		}
		return
	default:
		logger.Debug("Ignoring component action %q", action)
		return
	}
	b.dispatch(ctx, surfaceID, event, i)
}

func (b *Bot) handleModal(ctx context.Context, i *discordgo.Interaction) {
	data := i.ModalSubmitData()
	surfaceID, action, ok := parseCustomID(data.CustomID)
	if !ok || action != actionModal {
		logger.Debug("Ignoring modal %q", data.CustomID)
		return
	}
	b.dispatch(ctx, surfaceID, domain.SubmitSearch(modalText(data.Components)), i)
}

func (b *Bot) dispatch(ctx context.Context, surfaceID string, event domain.Event, i *discordgo.Interaction) {
	surface, _ := b.surface(surfaceID)
	reply := &interactionReply{api: b.api, i: i, surfaceID: surfaceID, surface: surface}
	err := b.browse.Dispatch(ctx, surfaceID, event, reply)
	switch {
	case err == nil, errors.Is(err, domain.ErrRender):
		if err != nil {
			logger.Warn("Render failed on %s: %v", surfaceID, err)
		}
		if surface != nil {
			surface.track(i)
		}
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
		b.respondEphemeral(i, noticeEmbed("⏰ Library Session Expired", services.NoticeSessionExpired, colorWarning))
	default:
		logger.Error("Event %s on %s failed: %v", event.Kind, surfaceID, err)
	}
}

func (b *Bot) showStats(ctx context.Context, i *discordgo.Interaction) {
	caller := callerOf(b.api, i, true)
	stats, err := b.admin.Stats(ctx, caller)
	if err != nil {
		b.respondAdminError(i, err)
		return
	}
	runs, err := b.admin.RecentRuns(ctx, caller, recentRunsShown)
	if err != nil {
		logger.Warn("Run log unavailable: %v", err)
	}
	b.respondEphemeral(i, statsEmbed(stats, runs))
}

type adminOp func(ctx context.Context, caller domain.Caller) (*domain.SyncReport, error)

// runAdmin answers publicly that the operation started, runs it, then edits
// the answer with the report.
func (b *Bot) runAdmin(ctx context.Context, i *discordgo.Interaction, starting, title string, op adminOp) {
	caller := callerOf(b.api, i, true)
	if err := b.admin.Authorize(caller); err != nil {
		b.respondAdminError(i, err)
		return
	}
	if b.admin.Running() {
		b.respondAdminError(i, domain.ErrOperationInProgress)
		return
	}

	if err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: "🔄 " + starting},
	}); err != nil {
		logger.Warn("Admin command answer failed: %v", err)
		return
	}

	report, err := op(ctx, caller)
	var embed *discordgo.MessageEmbed
	switch {
	case errors.Is(err, domain.ErrOperationInProgress):
		embed = noticeEmbed("⏳ Operation In Progress", services.NoticeInProgress, colorWarning)
	case report != nil:
		if err != nil {
			logger.Warn("%s finished with error: %v", title, err)
			if report.Summary.Error == "" {
				report.Summary.Error = err.Error()
			}
		}
		embed = reportEmbed(title, report)
	default:
		embed = noticeEmbed("❌ Operation Failed", services.Truncate(err.Error(), 1000), colorError)
	}

	empty := ""
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := b.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &empty,
		Embeds:  &embeds,
	}); err != nil {
		logger.Warn("Admin report failed: %v", err)
	}
}

func (b *Bot) respondAdminError(i *discordgo.Interaction, err error) {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		b.respondEphemeral(i, noticeEmbed("❌ Permission Denied", services.NoticePermissionDenied, colorError))
	case errors.Is(err, domain.ErrOperationInProgress):
		b.respondEphemeral(i, noticeEmbed("⏳ Operation In Progress", services.NoticeInProgress, colorWarning))
	default:
		logger.Warn("Admin command failed: %v", err)
		b.respondEphemeral(i, noticeEmbed("❌ Error", services.NoticeRetry, colorError))
	}
}

func (b *Bot) respondEphemeral(i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	if err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		logger.Warn("Ephemeral reply failed: %v", err)
	}
}

func (b *Bot) surface(id string) (*messageSurface, bool) {
	v, ok := b.surfaces.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*messageSurface), true
}

// selection maps the chosen option back to the full filter value shown on
// the surface. An empty selection clears the filter.
func (b *Bot) selection(surfaceID, action string, values []string) (string, bool) {
	if len(values) == 0 {
		return "", true
	}
	surface, ok := b.surface(surfaceID)
	if !ok {
		return "", false
	}
	return surface.selection(action, values[0])
}

func selectEvent(action, value string) domain.Event {
	switch action {
	case actionCategory:
		return domain.SelectCategory(value)
	case actionAuthor:
		return domain.SelectAuthor(value)
	}
	return domain.SelectTag(value)
}

// modalText finds the search input among submitted modal components.
func modalText(components []discordgo.MessageComponent) string {
	for _, c := range components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		}
		for _, inner := range row {
			switch in := inner.(type) {
			case *discordgo.TextInput:
				if in.CustomID == searchInputID {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == searchInputID {
					return in.Value
				}
			}
		}
	}
	return ""
}
