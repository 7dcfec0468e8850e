package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/services"
)

var (
	searchLimit    int
	searchJSON     bool
	searchCategory string
	searchAuthor   string
	searchTag      string
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search the catalog",
	Long: `Searches the catalog, newest first. Terms match title, categories,
author, tags and description; the flags filter by exact facet.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by category")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "filter by author")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "filter by tag")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	filters := domain.Filters{
		Category:   searchCategory,
		Author:     searchAuthor,
		Tag:        searchTag,
		SearchTerm: strings.Join(args, " "),
	}.Normalise()

	results, err := libraryService.Search(commandContext(cmd), filters, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, filters, results)
	return nil
}

// searchResult is the JSON shape of one article.
type searchResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Categories    []string `json:"categories"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"published_date,omitempty"`
	Tags          []string `json:"tags"`
	Description   string   `json:"description,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.Article) error {
	out := make([]searchResult, len(results))
	for i, a := range results {
		out[i] = searchResult{
			Title:         a.Title,
			URL:           a.URL,
			Categories:    a.Categories,
			Author:        a.Author,
			PublishedDate: a.PublishedDate,
			Tags:          a.Tags,
			Description:   a.Description,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, filters domain.Filters, results []domain.Article) {
	if !filters.IsEmpty() {
		cmd.Printf("Filters: %s\n", filters.Describe())
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("%d results:\n\n", len(results))
	for i := range results {
		card := services.ArticleCard(&results[i])
		cmd.Printf("  [%d] %s\n", i+1, card.Title)
		cmd.Printf("      %s | %s | %s\n", card.Category, card.Author, card.Date)
		cmd.Printf("      %s\n", card.URL)
		cmd.Println()
	}
}
