// Package connectors holds the adapters that read the library website.
// Package site implements the sitemap manifest, the paginated archive
// listing and the rate-limited page fetcher used by a sync run.
package connectors
