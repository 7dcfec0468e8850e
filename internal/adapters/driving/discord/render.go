package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
)

// Embed colours.
const (
	colorLibrary = 0x8B4513
	colorSuccess = 0x2ECC71
	colorWarning = 0xF1C40F
	colorError   = 0xE74C3C
)

const footerText = "Sacred Community Project Digital Library"

// maxSelectOptions is the platform limit per dropdown, including "All ...".
const maxSelectOptions = 25

// renderView converts a view into the embed and controls of one message.
func renderView(v domain.View, surfaceID string) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title:  v.Title,
		Color:  colorLibrary,
		Footer: &discordgo.MessageEmbedFooter{Text: footerText},
	}

	switch v.Kind {
	case domain.ViewWelcome:
		embed.Title = "📚 " + v.Title
		embed.Description = v.Body
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name: "Library Stats",
			Value: fmt.Sprintf("📖 %d articles\n📂 %d categories\n✍️ %d authors\n🏷️ %d tags",
				v.Stats.TotalArticles, v.Stats.TotalCategories, v.Stats.TotalAuthors, v.Stats.TotalTags),
			Inline: false,
		}}
	case domain.ViewResults:
		embed.Description = resultsBody(v)
		if v.PageCount > 1 {
			embed.Footer.Text = fmt.Sprintf("Page %d of %d • %s", v.Page, v.PageCount, footerText)
		}
	case domain.ViewEmpty:
		embed.Title = "🔍 " + v.Title
		embed.Description = withFilters(v.Filters, v.Body)
		embed.Color = colorWarning
	case domain.ViewError:
		embed.Title = "❌ " + v.Title
		embed.Description = withFilters(v.Filters, v.Body)
		embed.Color = colorError
	case domain.ViewExpired:
		embed.Title = "⏰ " + v.Title
		embed.Description = v.Body
		embed.Color = colorWarning
	default:
		embed.Description = v.Body
	}

	if !v.Interactive {
		return embed, []discordgo.MessageComponent{}
	}
	return embed, controls(v, surfaceID)
}

func resultsBody(v domain.View) string {
	var b strings.Builder
	if !v.Filters.IsEmpty() {
		fmt.Fprintf(&b, "**Active Filters:** %s\n\n", v.Filters.Describe())
	}
	for i, c := range v.Cards {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**[%s](%s)**\n", c.Title, c.URL)
		fmt.Fprintf(&b, "📂 %s • ✍️ %s • 📅 %s\n", c.Category, c.Author, c.Date)
		fmt.Fprintf(&b, "🏷️ %s\n", services.Truncate(c.Tags, 200))
		if c.Description != "" {
			fmt.Fprintf(&b, "> %s\n", c.Description)
		}
	}
	return b.String()
}

func withFilters(f domain.Filters, body string) string {
	if f.IsEmpty() {
		return body
	}
	return fmt.Sprintf("**Active Filters:** %s\n\n%s", f.Describe(), body)
}

// controls lays out three dropdowns and one row of buttons.
func controls(v domain.View, surfaceID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			selectMenu(surfaceID, actionCategory, "Filter by category...", "All Categories", v.Options.Categories, v.Filters.Category),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			selectMenu(surfaceID, actionAuthor, "Filter by author...", "All Authors", v.Options.Authors, v.Filters.Author),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			selectMenu(surfaceID, actionTag, "Filter by tag...", "All Tags", v.Options.Tags, v.Filters.Tag),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: customID(surfaceID, actionPrev),
				Label:    "Previous",
				Style:    discordgo.SecondaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "◀️"},
			},
			discordgo.Button{
				CustomID: customID(surfaceID, actionSearch),
				Label:    "Search",
				Style:    discordgo.PrimaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "🔍"},
			},
			discordgo.Button{
				CustomID: customID(surfaceID, actionReset),
				Label:    "Reset",
				Style:    discordgo.DangerButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
			},
			discordgo.Button{
				CustomID: customID(surfaceID, actionNext),
				Label:    "Next",
				Style:    discordgo.SecondaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "▶️"},
			},
		}},
	}
}

// selectMenu builds a dropdown whose first option clears the filter.
// Option values are indices into values; see optionValue.
// Values beyond the platform limit are dropped.
func selectMenu(surfaceID, action, placeholder, allLabel string, values []string, selected string) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, maxSelectOptions)
	options = append(options, discordgo.SelectMenuOption{
		Label:   allLabel,
		Value:   allValue,
		Default: selected == "",
	})
	seen := make(map[string]bool, len(values))
	for i, v := range values {
		if len(options) == maxSelectOptions {
			break
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		options = append(options, discordgo.SelectMenuOption{
			Label:   services.OptionLabel(v),
			Value:   optionIndex(i),
			Default: v == selected,
		})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID(surfaceID, action),
		Placeholder: placeholder,
		Options:     options,
	}
}

// searchModal asks for free-text search terms.
func searchModal(surfaceID, current string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customID(surfaceID, actionModal),
			Title:    "Search the Library",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    searchInputID,
						Label:       "Search terms",
						Style:       discordgo.TextInputShort,
						Placeholder: "Title, author, category, tag or description",
						Value:       current,
						Required:    false,
						MaxLength:   100,
					},
				}},
			},
		},
	}
}

// noticeEmbed is a one-off message with a title and body.
func noticeEmbed(title, body string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: body, Color: color}
}

func statsEmbed(stats domain.Stats, runs []domain.RunSummary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📊 Library Statistics",
		Color: colorLibrary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Articles", Value: fmt.Sprint(stats.TotalArticles), Inline: true},
			{Name: "Categories", Value: fmt.Sprint(stats.TotalCategories), Inline: true},
			{Name: "Authors", Value: fmt.Sprint(stats.TotalAuthors), Inline: true},
			{Name: "Tags", Value: fmt.Sprint(stats.TotalTags), Inline: true},
			{Name: "Last Update", Value: services.FormatLastUpdate(stats.LastUpdate), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText},
	}
	if len(runs) > 0 {
		lines := make([]string, 0, len(runs))
		for _, r := range runs {
			lines = append(lines, fmt.Sprintf("`%s` %s %s: %d/%d ok",
				r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Status, r.Succeeded, r.Fetched))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent Runs",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

// reportEmbed summarises a finished admin operation.
func reportEmbed(title string, report *domain.SyncReport) *discordgo.MessageEmbed {
	s := report.Summary
	color := colorSuccess
	if s.Status != domain.RunStatusSuccess {
		color = colorError
	}
	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: string(s.Status), Inline: true},
			{Name: "Duration", Value: s.Duration.Round(time.Second).String(), Inline: true},
			{Name: "Articles Found", Value: fmt.Sprint(s.ArticlesFound), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footerText},
	}

	if s.Mode == domain.RunModeCheck {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "New", Value: fmt.Sprint(s.NewCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "Changed", Value: fmt.Sprint(s.ChangedCount), Inline: true},
		)
		if sample := sampleURLs(s.NewURLs, s.ChangedURLs); sample != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Sample", Value: sample})
		}
	} else {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Selected", Value: fmt.Sprint(s.Selected), Inline: true},
			&discordgo.MessageEmbedField{Name: "Succeeded", Value: fmt.Sprint(s.Succeeded), Inline: true},
			&discordgo.MessageEmbedField{Name: "Failed", Value: fmt.Sprint(s.Failed), Inline: true},
		)
	}
	if s.Error != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Error",
			Value: services.Truncate(s.Error, 1000),
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Library",
		Value: fmt.Sprintf("%d articles • %d categories • %d authors",
			report.Stats.TotalArticles, report.Stats.TotalCategories, report.Stats.TotalAuthors),
	})
	return embed
}

func sampleURLs(newURLs, changed []string) string {
	var lines []string
	for _, u := range newURLs {
		lines = append(lines, "🆕 "+u)
	}
	for _, u := range changed {
		lines = append(lines, "✏️ "+u)
	}
	return services.Truncate(strings.Join(lines, "\n"), 1000)
}
