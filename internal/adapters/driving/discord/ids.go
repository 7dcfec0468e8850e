package discord

import (
	"fmt"
	"strconv"
	"strings"
)

// Component actions carried in custom IDs.
const (
	actionCategory = "category"
	actionAuthor   = "author"
	actionTag      = "tag"
	actionSearch   = "search"
	actionReset    = "reset"
	actionPrev     = "prev"
	actionNext     = "next"
	actionModal    = "modal"
)

const (
	customIDPrefix = "lib"

	// searchInputID is the text input inside the search modal.
	searchInputID = "terms"

	// allValue is the option value of the "All ..." entry. Option values
	// may not be empty, so it stands in for clearing the filter.
	allValue = "__all__"
)

// customID builds "lib:<surface>:<action>".
func customID(surfaceID, action string) string {
	return fmt.Sprintf("%s:%s:%s", customIDPrefix, surfaceID, action)
}

// parseCustomID splits a custom ID built by customID.
// The surface ID may not contain ':'; interaction IDs are numeric snowflakes.
func parseCustomID(id string) (surfaceID, action string, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// optionIndex is the select value of values[i]. Labels are clipped to the
// platform limit, so the value points back into the rendered list instead.
func optionIndex(i int) string {
	return strconv.Itoa(i)
}

// optionValue maps a selected option back to a filter value.
// It reports false when v does not index the rendered values.
func optionValue(v string, values []string) (string, bool) {
	if v == allValue {
		return "", true
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 || i >= len(values) {
		return "", false
	}
	return values[i], true
}
