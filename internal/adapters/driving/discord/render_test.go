package discord

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

func TestParseCustomID(t *testing.T) {
	tests := []struct {
		in      string
		surface string
		action  string
		ok      bool
	}{
		{customID("123", actionNext), "123", actionNext, true},
		{"lib:456:category", "456", "category", true},
		{"other:1:next", "", "", false},
		{"lib::next", "", "", false},
		{"lib:1", "", "", false},
		{"lib:1:next:extra", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			surface, action, ok := parseCustomID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.surface, surface)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestOptionValue(t *testing.T) {
	values := []string{"Poetry", "Essays"}
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{allValue, "", true},
		{"0", "Poetry", true},
		{"1", "Essays", true},
		{"2", "", false},
		{"-1", "", false},
		{"Poetry", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := optionValue(tt.in, values)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectMenu_CapsOptionsAndMarksAll(t *testing.T) {
	values := make([]string, 30)
	for i := range values {
		values[i] = fmt.Sprintf("Tag %02d", i)
	}

	menu := selectMenu("s1", actionTag, "Filter by tag...", "All Tags", values, "")
	require.Len(t, menu.Options, maxSelectOptions)
	assert.Equal(t, allValue, menu.Options[0].Value)
	assert.True(t, menu.Options[0].Default)
	assert.Equal(t, "Tag 00", menu.Options[1].Label)
	assert.Equal(t, "0", menu.Options[1].Value)
	assert.Equal(t, "lib:s1:tag", menu.CustomID)
	assert.Equal(t, discordgo.StringSelectMenu, menu.MenuType)
}

func TestSelectMenu_SelectedValueIsDefault(t *testing.T) {
	menu := selectMenu("s1", actionAuthor, "", "All Authors", []string{"Ann", "Bo"}, "Bo")
	assert.False(t, menu.Options[0].Default)
	assert.False(t, menu.Options[1].Default)
	assert.True(t, menu.Options[2].Default)
}

func TestSelectMenu_LongValuesStayDistinct(t *testing.T) {
	prefix := strings.Repeat("x", 100)
	values := []string{prefix + "-one", prefix + "-two"}

	menu := selectMenu("s1", actionTag, "", "All Tags", values, values[1])
	require.Len(t, menu.Options, 3)
	assert.Equal(t, prefix, menu.Options[1].Label)
	assert.Equal(t, prefix, menu.Options[2].Label)
	assert.NotEqual(t, menu.Options[1].Value, menu.Options[2].Value)
	assert.False(t, menu.Options[1].Default)
	assert.True(t, menu.Options[2].Default)

	got, ok := optionValue(menu.Options[2].Value, values)
	require.True(t, ok)
	assert.Equal(t, values[1], got)
}

func TestRenderView_Results(t *testing.T) {
	view := domain.View{
		Kind:    domain.ViewResults,
		Title:   "Library Search Results (12 found)",
		Filters: domain.Filters{Category: "Poetry"},
		Cards: []domain.Card{{
			Title: "Winter", URL: "https://example.org/digital-library/winter",
			Category: "Poetry", Author: "Ann", Date: "2024-01-01", Tags: "grief",
		}},
		Page:        1,
		PageCount:   3,
		Interactive: true,
	}

	embed, components := renderView(view, "s1")
	assert.Contains(t, embed.Description, "**Active Filters:** Category: Poetry")
	assert.Contains(t, embed.Description, "[Winter](https://example.org/digital-library/winter)")
	assert.Contains(t, embed.Footer.Text, "Page 1 of 3")
	require.Len(t, components, 4)

	buttons := components[3].(discordgo.ActionsRow).Components
	require.Len(t, buttons, 4)
	assert.Equal(t, "lib:s1:prev", buttons[0].(discordgo.Button).CustomID)
	assert.Equal(t, "lib:s1:next", buttons[3].(discordgo.Button).CustomID)
}

func TestRenderView_SinglePageHasNoPageFooter(t *testing.T) {
	embed, _ := renderView(domain.View{Kind: domain.ViewResults, Page: 1, PageCount: 1, Interactive: true}, "s1")
	assert.Equal(t, footerText, embed.Footer.Text)
}

func TestRenderView_WelcomeShowsStats(t *testing.T) {
	embed, components := renderView(domain.View{
		Kind:        domain.ViewWelcome,
		Title:       "Digital Library",
		Stats:       domain.Stats{TotalArticles: 42, TotalTags: 7},
		Interactive: true,
	}, "s1")
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "42 articles")
	assert.Contains(t, embed.Fields[0].Value, "7 tags")
	assert.Len(t, components, 4)
}

func TestRenderView_ExpiredHasNoControls(t *testing.T) {
	embed, components := renderView(domain.View{Kind: domain.ViewExpired, Title: "Library Session Expired"}, "s1")
	assert.Contains(t, embed.Title, "Library Session Expired")
	assert.Empty(t, components)
	assert.NotNil(t, components)
}

func TestReportEmbed_Check(t *testing.T) {
	embed := reportEmbed("Check", &domain.SyncReport{Summary: domain.RunSummary{
		Mode:     domain.RunModeCheck,
		Status:   domain.RunStatusSuccess,
		NewCount: 2,
		NewURLs:  []string{"https://example.org/digital-library/a"},
	}})

	names := make([]string, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "New")
	assert.Contains(t, names, "Sample")
	assert.NotContains(t, names, "Succeeded")
	assert.Equal(t, colorSuccess, embed.Color)
}

func TestReportEmbed_FailedRunIsRed(t *testing.T) {
	embed := reportEmbed("Update", &domain.SyncReport{Summary: domain.RunSummary{
		Mode:   domain.RunModeIncremental,
		Status: domain.RunStatusTimeout,
		Error:  "sync timed out",
	}})
	assert.Equal(t, colorError, embed.Color)
	assert.Equal(t, "Error", embed.Fields[len(embed.Fields)-2].Name)
}

func TestModalText(t *testing.T) {
	assert.Equal(t, "grief", modalText([]discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: "other", Value: "x"},
			&discordgo.TextInput{CustomID: searchInputID, Value: "grief"},
		}},
	}))
	assert.Equal(t, "", modalText(nil))
}

func TestCallerOf(t *testing.T) {
	api := &fakeAPI{roles: []*discordgo.Role{
		{ID: "r1", Name: "Moderator"},
		{ID: "r2", Name: "Member"},
	}}
	i := commandInteraction("1", cmdStats, member("u1", "r1", "r9"))
	i.Member.Nick = "Reader"
	i.Member.Permissions = discordgo.PermissionAdministrator

	c := callerOf(api, i, true)
	assert.Equal(t, "u1", c.ID)
	assert.Equal(t, "Reader", c.Name)
	assert.Equal(t, []string{"Moderator"}, c.Roles)
	assert.True(t, c.Administrator)

	c = callerOf(api, i, false)
	assert.Nil(t, c.Roles)
}

func TestCallerOf_DirectMessage(t *testing.T) {
	i := &discordgo.Interaction{User: &discordgo.User{ID: "u2", Username: "dm"}}
	c := callerOf(&fakeAPI{}, i, true)
	assert.Equal(t, "u2", c.ID)
	assert.False(t, c.Administrator)
	assert.Empty(t, c.Roles)
}
