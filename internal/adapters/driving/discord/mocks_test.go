package discord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/librarian/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driving"
	"github.com/custodia-labs/librarian/internal/core/services"
)

// fakeAPI records every call the adapter makes.
type fakeAPI struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
	deletes   []string
	roles     []*discordgo.Role

	deleteErr error
}

func (f *fakeAPI) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) InteractionResponseDelete(i *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, i.ID)
	return f.deleteErr
}

func (f *fakeAPI) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeAPI) GuildRoles(_ string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeAPI) lastResponse(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.responses)
	return f.responses[len(f.responses)-1]
}

func (f *fakeAPI) lastEdit(t *testing.T) *discordgo.WebhookEdit {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.edits)
	return f.edits[len(f.edits)-1]
}

// mockAdmin overrides the admin operations the handlers call.
type mockAdmin struct {
	driving.AdminService

	allowed bool
	running bool
	report  *domain.SyncReport
	err     error
	updates atomic.Int32
}

func (m *mockAdmin) Authorize(c domain.Caller) error {
	if m.allowed || c.Administrator {
		return nil
	}
	return domain.ErrPermissionDenied
}

func (m *mockAdmin) Running() bool { return m.running }

func (m *mockAdmin) Update(_ context.Context, c domain.Caller) (*domain.SyncReport, error) {
	m.updates.Add(1)
	if err := m.Authorize(c); err != nil {
		return nil, err
	}
	return m.report, m.err
}

func (m *mockAdmin) Stats(_ context.Context, c domain.Caller) (domain.Stats, error) {
	if err := m.Authorize(c); err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{TotalArticles: 12, TotalCategories: 2}, nil
}

func (m *mockAdmin) RecentRuns(context.Context, domain.Caller, int) ([]domain.RunSummary, error) {
	return []domain.RunSummary{{Mode: domain.RunModeIncremental, Status: domain.RunStatusSuccess, Succeeded: 3, Fetched: 3}}, nil
}

type botFixture struct {
	api     *fakeAPI
	admin   *mockAdmin
	catalog *services.Catalog
	browse  *services.BrowseService
	bot     *Bot
}

func newBotFixture(t *testing.T, articles int, idle time.Duration) *botFixture {
	t.Helper()
	store := memory.NewCatalogStore()
	for i := 0; i < articles; i++ {
		require.NoError(t, store.Upsert(context.Background(), &domain.Article{
			URL:           fmt.Sprintf("https://example.org/digital-library/a%02d", i),
			Title:         fmt.Sprintf("Poem %02d", i),
			Categories:    []string{"Poetry"},
			Author:        "Ann",
			PublishedDate: fmt.Sprintf("2024-01-%02d", i+1),
			Tags:          []string{"grief"},
			ScrapedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ScrapeSuccess: true,
		}))
	}
	catalog := services.NewCatalog(store, services.CatalogOptions{})
	browse := services.NewBrowseService(catalog, nil, services.BrowseOptions{PageSize: 5, ResultLimit: 20, IdleTimeout: idle})
	api := &fakeAPI{}
	admin := &mockAdmin{}
	return &botFixture{
		api:     api,
		admin:   admin,
		catalog: catalog,
		browse:  browse,
		bot:     newBot(api, browse, admin, Options{}),
	}
}

// pick returns the select value that chooses value in the surface's
// rendered dropdown for action.
func pick(t *testing.T, f *botFixture, surfaceID, action, value string) string {
	t.Helper()
	surface, ok := f.bot.surface(surfaceID)
	require.True(t, ok)
	surface.mu.Lock()
	defer surface.mu.Unlock()
	values := map[string][]string{
		actionCategory: surface.options.Categories,
		actionAuthor:   surface.options.Authors,
		actionTag:      surface.options.Tags,
	}[action]
	for i, v := range values {
		if v == value {
			return optionIndex(i)
		}
	}
	require.Failf(t, "option not rendered", "%s %q", action, value)
	return ""
}

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: "user-" + id}, Roles: roles}
}

func commandInteraction(id, name string, m *discordgo.Member) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      id,
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g1",
		Member:  m,
		Data:    discordgo.ApplicationCommandInteractionData{Name: name},
	}
}

func componentInteraction(id, custom string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      id,
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "g1",
		Member:  member("u1"),
		Data:    discordgo.MessageComponentInteractionData{CustomID: custom, Values: values},
	}
}

func modalInteraction(id, custom, text string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      id,
		Type:    discordgo.InteractionModalSubmit,
		GuildID: "g1",
		Member:  member("u1"),
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: custom,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: searchInputID, Value: text},
				}},
			},
		},
	}
}
