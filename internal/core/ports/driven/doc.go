// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CatalogStore: Article persistence, filtered search and aggregates
//   - RunLogStore: Append-only sync run history
//   - ManifestSource: Remote sitemap discovery
//   - ArchiveSource: Paginated archive listing
//   - PageFetcher: Single page retrieval with bounded retry
//   - Extractor: Page content to article metadata
//
// # Surface Interfaces
//
// Implemented by chat and terminal adapters so the browsing session can
// render without knowing the platform:
//
//   - Surface: A long-lived render target owned by one session
//   - EventReply: The reply channel of a single UI event
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
