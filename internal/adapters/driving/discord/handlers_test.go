package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
)

func openLibrary(t *testing.T, f *botFixture, id string) {
	t.Helper()
	f.bot.handle(context.Background(), commandInteraction(id, cmdLibrary, member("u1")))
	resp := f.api.lastResponse(t)
	require.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
}

func TestLibraryCommand_OpensEphemeralSession(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)

	openLibrary(t, f, "100")

	resp := f.api.lastResponse(t)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Embeds[0].Title, "Digital Library")
	assert.Len(t, resp.Data.Components, 4)
	assert.Equal(t, 1, f.browse.Active())

	_, ok := f.bot.surfaces.Load("100")
	assert.True(t, ok)
}

func TestLibraryCommand_EmptyCatalog(t *testing.T) {
	f := newBotFixture(t, 0, time.Minute)

	f.bot.handle(context.Background(), commandInteraction("100", cmdLibrary, member("u1")))

	resp := f.api.lastResponse(t)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Equal(t, services.NoticeStoreUnavailable, resp.Data.Embeds[0].Description)
	assert.Equal(t, 0, f.browse.Active())
}

func TestComponent_FilterDefersThenEdits(t *testing.T) {
	f := newBotFixture(t, 12, time.Minute)
	openLibrary(t, f, "100")

	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionCategory), pick(t, f, "100", actionCategory, "Poetry")))

	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, f.api.lastResponse(t).Type)
	edit := f.api.lastEdit(t)
	require.NotNil(t, edit.Embeds)
	embed := (*edit.Embeds)[0]
	assert.Contains(t, embed.Title, "12 found")
	assert.Contains(t, embed.Footer.Text, "Page 1 of 3")

	state, err := f.browse.State("100")
	require.NoError(t, err)
	assert.Equal(t, "Poetry", state.Filters.Category)
}

func TestComponent_AllOptionClearsFilter(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	openLibrary(t, f, "100")

	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionAuthor), pick(t, f, "100", actionAuthor, "Ann")))
	f.bot.handle(context.Background(), componentInteraction("102", customID("100", actionAuthor), allValue))

	state, err := f.browse.State("100")
	require.NoError(t, err)
	assert.Empty(t, state.Filters.Author)
}

func TestComponent_LongAuthorFiltersExactly(t *testing.T) {
	f := newBotFixture(t, 2, time.Minute)
	long := strings.Repeat("a", 100)
	for _, author := range []string{long + " First", long + " Second"} {
		require.NoError(t, f.catalog.Upsert(context.Background(), &domain.Article{
			URL:           "https://example.org/digital-library/" + strings.Fields(author)[1],
			Title:         author,
			Categories:    []string{"Essays"},
			Author:        author,
			PublishedDate: "2024-02-01",
			ScrapeSuccess: true,
		}))
	}
	openLibrary(t, f, "100")

	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionAuthor), pick(t, f, "100", actionAuthor, long+" Second")))

	state, err := f.browse.State("100")
	require.NoError(t, err)
	assert.Equal(t, long+" Second", state.Filters.Author)
	require.Len(t, state.Results, 1)
	assert.Equal(t, long+" Second", state.Results[0].Author)
}

func TestComponent_UnknownOptionAnswersExpired(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	openLibrary(t, f, "100")

	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionTag), "7"))

	resp := f.api.lastResponse(t)
	assert.Equal(t, services.NoticeSessionExpired, resp.Data.Embeds[0].Description)
	state, err := f.browse.State("100")
	require.NoError(t, err)
	assert.Empty(t, state.Filters.Tag)
}

func TestComponent_PagingBoundaryNotice(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	openLibrary(t, f, "100")
	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionTag), pick(t, f, "100", actionTag, "grief")))

	f.bot.handle(context.Background(), componentInteraction("102", customID("100", actionNext)))

	f.api.mu.Lock()
	defer f.api.mu.Unlock()
	require.Len(t, f.api.followups, 1)
	assert.Equal(t, services.NoticeLastPage, f.api.followups[0].Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, f.api.followups[0].Flags)
}

func TestComponent_UnknownSessionAnswersExpired(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)

	f.bot.handle(context.Background(), componentInteraction("101", customID("999", actionNext)))

	resp := f.api.lastResponse(t)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Equal(t, services.NoticeSessionExpired, resp.Data.Embeds[0].Description)
}

func TestComponent_IgnoresForeignIDs(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)

	f.bot.handle(context.Background(), componentInteraction("101", "poll:1:vote"))

	assert.Empty(t, f.api.responses)
}

func TestSearchButton_OpensModal(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	openLibrary(t, f, "100")

	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionSearch)))

	resp := f.api.lastResponse(t)
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, "lib:100:modal", resp.Data.CustomID)

	state, err := f.browse.State("100")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseWelcome, state.Phase)
}

func TestModalSubmit_Searches(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	openLibrary(t, f, "100")

	f.bot.handle(context.Background(), modalInteraction("102", customID("100", actionModal), "  Poem 01 "))

	state, err := f.browse.State("100")
	require.NoError(t, err)
	assert.Equal(t, "Poem 01", state.Filters.SearchTerm)
	require.Len(t, state.Results, 1)
	assert.Contains(t, (*f.api.lastEdit(t).Embeds)[0].Title, "1 found")
}

func TestSessionExpiry_RemovesMessageAndForgetsSurface(t *testing.T) {
	f := newBotFixture(t, 3, 50*time.Millisecond)
	openLibrary(t, f, "100")
	f.bot.handle(context.Background(), componentInteraction("101", customID("100", actionTag), pick(t, f, "100", actionTag, "grief")))

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, f.browse.Sweep(context.Background()))

	f.api.mu.Lock()
	assert.Equal(t, []string{"101"}, f.api.deletes, "the latest interaction on the message is used")
	f.api.mu.Unlock()
	_, ok := f.bot.surfaces.Load("100")
	assert.False(t, ok)
}

func TestSessionExpiry_ReplacesWhenDeleteFails(t *testing.T) {
	f := newBotFixture(t, 3, 50*time.Millisecond)
	f.api.deleteErr = assert.AnError
	openLibrary(t, f, "100")

	time.Sleep(120 * time.Millisecond)
	f.browse.Sweep(context.Background())

	edit := f.api.lastEdit(t)
	assert.Contains(t, (*edit.Embeds)[0].Title, "Library Session Expired")
	assert.Empty(t, *edit.Components)
}

func TestUpdateCommand_Denied(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)

	f.bot.handle(context.Background(), commandInteraction("200", cmdUpdate, member("u1")))

	resp := f.api.lastResponse(t)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	assert.Equal(t, services.NoticePermissionDenied, resp.Data.Embeds[0].Description)
	assert.Zero(t, f.admin.updates.Load())
}

func TestUpdateCommand_InProgress(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	f.admin.allowed = true
	f.admin.running = true

	f.bot.handle(context.Background(), commandInteraction("200", cmdUpdate, member("u1")))

	resp := f.api.lastResponse(t)
	assert.Equal(t, services.NoticeInProgress, resp.Data.Embeds[0].Description)
	assert.Zero(t, f.admin.updates.Load())
}

func TestUpdateCommand_AnnouncesThenReports(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	f.admin.allowed = true
	f.admin.report = &domain.SyncReport{
		Summary: domain.RunSummary{Mode: domain.RunModeIncremental, Status: domain.RunStatusSuccess, Selected: 2, Succeeded: 2},
		Stats:   domain.Stats{TotalArticles: 5},
	}

	f.bot.handle(context.Background(), commandInteraction("200", cmdUpdate, member("u1")))

	resp := f.api.lastResponse(t)
	assert.Contains(t, resp.Data.Content, "Starting incremental update...")
	assert.Zero(t, resp.Data.Flags&discordgo.MessageFlagsEphemeral)

	edit := f.api.lastEdit(t)
	assert.Equal(t, "", *edit.Content)
	embed := (*edit.Embeds)[0]
	assert.Contains(t, embed.Title, "Update Complete")
	assert.Equal(t, colorSuccess, embed.Color)
	assert.Equal(t, int32(1), f.admin.updates.Load())
}

func TestUpdateCommand_LostRace(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	f.admin.allowed = true
	f.admin.err = domain.ErrOperationInProgress

	f.bot.handle(context.Background(), commandInteraction("200", cmdUpdate, member("u1")))

	embed := (*f.api.lastEdit(t).Embeds)[0]
	assert.Equal(t, services.NoticeInProgress, embed.Description)
}

func TestStatsCommand(t *testing.T) {
	f := newBotFixture(t, 3, time.Minute)
	admin := member("u1")
	admin.Permissions = discordgo.PermissionAdministrator

	f.bot.handle(context.Background(), commandInteraction("300", cmdStats, admin))

	resp := f.api.lastResponse(t)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	embed := resp.Data.Embeds[0]
	assert.Contains(t, embed.Title, "Library Statistics")
	assert.Equal(t, "12", embed.Fields[0].Value)
	assert.Equal(t, "Recent Runs", embed.Fields[len(embed.Fields)-1].Name)
}

func TestCommands_Registered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range commands() {
		names[c.Name] = true
	}
	for _, want := range []string{cmdLibrary, cmdStats, cmdUpdate, cmdRebuild, cmdCheck} {
		assert.True(t, names[want], want)
	}
}
