package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

// Display limits for article cards and option labels.
const (
	CardTitleLimit       = 100
	CardCategoryLimit    = 40
	CardAuthorLimit      = 30
	CardDescriptionLimit = 100
	OptionLabelLimit     = 100
)

// Display fallbacks. These are presentation concerns only; the stored
// sentinels are left untouched.
const (
	DisplayNoCategory = "General"
	DisplayNoAuthor   = "Unknown"
	DisplayNoTags     = "No tags"
	DisplayNoDate     = "Unknown"
)

// User-facing notices.
const (
	NoticeFirstPage        = "You're already on the first page!"
	NoticeLastPage         = "You're already on the last page!"
	NoticeRetry            = "Something went wrong while updating the library. Please try again."
	NoticeStoreUnavailable = "The library is unavailable right now. Please contact an admin."
	NoticePermissionDenied = "You need admin permissions to use this command."
	NoticeInProgress       = "A library operation is already running. Please wait for it to finish."
	NoticeSessionExpired   = "This library session has expired. Use /library to open a fresh interface."
)

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// clip shortens s to at most n runes without a marker.
func clip(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ArticleCard builds the display form of an article.
func ArticleCard(a *domain.Article) domain.Card {
	category := a.PrimaryCategory()
	if category == "" {
		category = DisplayNoCategory
	}
	author := a.Author
	if author == "" || author == domain.UnknownAuthor {
		author = DisplayNoAuthor
	}
	tags := DisplayNoTags
	if len(a.Tags) > 0 {
		tags = strings.Join(a.Tags, ", ")
	}
	date := a.PublishedDate
	if date == "" {
		date = DisplayNoDate
	}
	return domain.Card{
		Title:       Truncate(a.Title, CardTitleLimit),
		URL:         a.URL,
		Category:    clip(category, CardCategoryLimit),
		Author:      clip(author, CardAuthorLimit),
		Date:        date,
		Tags:        tags,
		Description: Truncate(a.Description, CardDescriptionLimit),
	}
}

// WelcomeView is shown when a session opens or is reset.
func WelcomeView(stats domain.Stats, options domain.OptionSet, idle time.Duration) domain.View {
	body := "Welcome! Use the dropdowns below to browse, or Search for keywords. " +
		"Reset clears all filters and returns here."
	if idle > 0 {
		body += fmt.Sprintf("\n\nThis interface closes after %s of inactivity.", humanDuration(idle))
	}
	return domain.View{
		Kind:        domain.ViewWelcome,
		Title:       "Digital Library",
		Body:        body,
		Stats:       stats,
		Options:     options,
		Page:        1,
		PageCount:   1,
		Interactive: true,
	}
}

// ResultsView renders the current page of a session, or the empty view.
func ResultsView(state *domain.SessionState, pageSize int, options domain.OptionSet) domain.View {
	if len(state.Results) == 0 {
		return domain.View{
			Kind:        domain.ViewEmpty,
			Title:       "No Results Found",
			Body:        "Try adjusting your filters or search terms.",
			Filters:     state.Filters,
			Options:     options,
			Page:        1,
			PageCount:   1,
			Interactive: true,
		}
	}

	slice := state.PageSlice(pageSize)
	cards := make([]domain.Card, len(slice))
	for i := range slice {
		cards[i] = ArticleCard(&slice[i])
	}
	return domain.View{
		Kind:        domain.ViewResults,
		Title:       fmt.Sprintf("Library Search Results (%d found)", len(state.Results)),
		Filters:     state.Filters,
		Cards:       cards,
		Page:        state.Page + 1,
		PageCount:   state.PageCount(pageSize),
		Total:       len(state.Results),
		Options:     options,
		Interactive: true,
	}
}

// ErrorView is shown when a search fails. The filters stay visible.
func ErrorView(filters domain.Filters, options domain.OptionSet) domain.View {
	return domain.View{
		Kind:        domain.ViewError,
		Title:       "Search Error",
		Body:        "An error occurred while searching. Please try again.",
		Filters:     filters,
		Options:     options,
		Page:        1,
		PageCount:   1,
		Interactive: true,
	}
}

// ExpiredView replaces a surface that could not be removed.
func ExpiredView(idle time.Duration) domain.View {
	body := "Use /library to open a fresh interface!"
	if idle > 0 {
		body = fmt.Sprintf("This interface timed out after %s.\n%s", humanDuration(idle), body)
	}
	return domain.View{
		Kind:      domain.ViewExpired,
		Title:     "Library Session Expired",
		Body:      body,
		Page:      1,
		PageCount: 1,
	}
}

// OptionLabel clips a value for use as a dropdown label.
func OptionLabel(value string) string {
	return clip(value, OptionLabelLimit)
}

// FormatLastUpdate renders a stats timestamp.
func FormatLastUpdate(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
