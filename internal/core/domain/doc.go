// Package domain defines the core business entities for Librarian.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Article: One catalog entry scraped from the library site
//   - ManifestEntry: A URL and its last-modified stamp from the sitemap
//   - RunSummary: The counters of one sync run
//   - SessionState: The filters, results and page of a browsing session
//   - View: Platform-neutral render content for a browsing surface
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
