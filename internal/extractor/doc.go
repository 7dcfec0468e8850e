// Package extractor maps an article page to a catalog record.
// It reads the site's blog markup with goquery and flattens rich text with
// a bluemonday strict policy.
package extractor
