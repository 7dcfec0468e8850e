package domain

import "strings"

// Filters are the independent, AND-combined criteria of a catalog search.
// An empty field means the filter is not set.
type Filters struct {
	// Category matches when the value occurs within the stored category set.
	Category string

	// Author matches exactly.
	Author string

	// Tag matches by set membership.
	Tag string

	// SearchTerm is a case-insensitive substring over title, categories,
	// author, tags and description.
	SearchTerm string
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.Category == "" && f.Author == "" && f.Tag == "" && f.SearchTerm == ""
}

// Normalise trims whitespace from every field.
func (f Filters) Normalise() Filters {
	return Filters{
		Category:   strings.TrimSpace(f.Category),
		Author:     strings.TrimSpace(f.Author),
		Tag:        strings.TrimSpace(f.Tag),
		SearchTerm: strings.TrimSpace(f.SearchTerm),
	}
}

// Describe renders active filters as "Category: X • Author: Y".
func (f Filters) Describe() string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, "Category: "+f.Category)
	}
	if f.Author != "" {
		parts = append(parts, "Author: "+f.Author)
	}
	if f.Tag != "" {
		parts = append(parts, "Tag: "+f.Tag)
	}
	if f.SearchTerm != "" {
		parts = append(parts, "Search: \""+f.SearchTerm+"\"")
	}
	return strings.Join(parts, " • ")
}
