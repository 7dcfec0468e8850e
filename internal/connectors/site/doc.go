// Package site talks to the library's public website.
//
// It provides the three outbound ports the sync reconciler needs:
//   - Client implements driven.PageFetcher: a rate-limited HTTP GET with
//     bounded retry
//   - Sitemap implements driven.ManifestSource over sitemap.xml and
//     sitemap.index.xml
//   - Archive implements driven.ArchiveSource over the paginated listing
//
// All requests go through one Client so the request delay applies across
// manifest, archive and article fetches alike.
package site
