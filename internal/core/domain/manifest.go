package domain

// ManifestEntry is one URL listed by the remote sitemap.
type ManifestEntry struct {
	URL string

	// LastModified is the sitemap lastmod value. Empty when absent.
	LastModified string
}

// ArchiveEntry is one item from the paginated archive listing.
type ArchiveEntry struct {
	URL string

	// Date is YYYY-MM-DD, or the listing's raw text when it could not be parsed.
	Date string
}

// ArchivePage is one page of the archive listing.
type ArchivePage struct {
	Entries []ArchiveEntry

	// Next is the absolute URL of the following page. Empty on the last page.
	Next string
}

// ReconcileResult is the outcome of comparing a manifest against the store.
type ReconcileResult struct {
	// New entries have no stored record.
	New []ManifestEntry

	// Changed entries have a stored record whose LastModified differs.
	Changed []ManifestEntry

	// Skipped counts entries that are up to date.
	Skipped int
}

// ToFetch returns new entries followed by changed entries.
func (r ReconcileResult) ToFetch() []ManifestEntry {
	out := make([]ManifestEntry, 0, len(r.New)+len(r.Changed))
	out = append(out, r.New...)
	return append(out, r.Changed...)
}
