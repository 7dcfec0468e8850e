package site

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/librarian/internal/core/domain"
)

func archiveEntry(href, date string) string {
	return fmt.Sprintf(`<article class="blog-basic-grid--container">
  <h1 class="blog-title"><a href="%s">Title</a></h1>
  <time class="blog-date">%s</time>
</article>`, href, date)
}

func TestParseArchivePage(t *testing.T) {
	base, _ := url.Parse("https://example.org/digital-library")
	html := "<html><body>" +
		archiveEntry("/digital-library/one", "7/19/25") +
		archiveEntry("/digital-library/two", "12/01/24") +
		archiveEntry("/digital-library/three", "sometime") +
		archiveEntry("/digital-library/undated", "") +
		`<article class="blog-basic-grid--container"><h1 class="blog-title">No link</h1></article>` +
		`<div class="older"><a href="/digital-library?offset=123">Older</a></div>` +
		"</body></html>"

	page, err := ParseArchivePage(base, []byte(html))
	require.NoError(t, err)
	assert.Equal(t, []domain.ArchiveEntry{
		{URL: "https://example.org/digital-library/one", Date: "2025-07-19"},
		{URL: "https://example.org/digital-library/two", Date: "2024-12-01"},
		{URL: "https://example.org/digital-library/three", Date: "sometime"},
	}, page.Entries)
	assert.Equal(t, "https://example.org/digital-library?offset=123", page.Next)
}

func TestParseArchivePage_LastPage(t *testing.T) {
	base, _ := url.Parse("https://example.org/digital-library")
	page, err := ParseArchivePage(base, []byte("<html><body>"+archiveEntry("/digital-library/x", "1/2/23")+"</body></html>"))
	require.NoError(t, err)
	assert.Empty(t, page.Next)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "2023-01-02", page.Entries[0].Date)
}

func TestNormaliseArchiveDate(t *testing.T) {
	assert.Equal(t, "2025-07-19", NormaliseArchiveDate("7/19/25"))
	assert.Equal(t, "2024-03-05", NormaliseArchiveDate("03/05/24"))
	assert.Equal(t, "July 2025", NormaliseArchiveDate("July 2025"))
}

func TestArchive_ListPage(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/digital-library", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>"+archiveEntry("/digital-library/one", "7/19/25")+
			`<div class="older"><a href="/digital-library?offset=1">Older</a></div></body></html>`)
	})

	archive := NewArchive(testClient(), srv.URL, "/digital-library/")
	assert.Equal(t, srv.URL+"/digital-library", archive.FirstPage())

	page, err := archive.ListPage(context.Background(), archive.FirstPage())
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, srv.URL+"/digital-library/one", page.Entries[0].URL)
	assert.Equal(t, srv.URL+"/digital-library?offset=1", page.Next)
}

func TestArchive_ListPageError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewArchive(testClient(), srv.URL, "digital-library").ListPage(context.Background(), srv.URL+"/digital-library")
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}
