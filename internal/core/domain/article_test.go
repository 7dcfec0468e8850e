package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticle_PrimaryCategory(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       string
	}{
		{"first label", []string{"Grief", "Healing"}, "Grief"},
		{"none", nil, ""},
		{"sentinel only", []string{Uncategorized}, ""},
		{"skips empty", []string{"", "Music"}, "Music"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Article{Categories: tt.categories}
			assert.Equal(t, tt.want, a.PrimaryCategory())
		})
	}
}

func TestJoinCategories(t *testing.T) {
	assert.Equal(t, "Grief, Healing", JoinCategories([]string{"Grief", "Healing"}))
	assert.Equal(t, Uncategorized, JoinCategories(nil))
}

func TestSplitCategories(t *testing.T) {
	assert.Equal(t, []string{"Grief", "Healing"}, SplitCategories("Grief, Healing"))
	assert.Equal(t, []string{"A", "B"}, SplitCategories(" A ,, B "))
	assert.Nil(t, SplitCategories(""))
}

func TestSplitJoinCategories_RoundTrip(t *testing.T) {
	in := []string{"Poetry", "Short Stories"}
	assert.Equal(t, in, SplitCategories(JoinCategories(in)))
}

func TestSentinels(t *testing.T) {
	assert.Equal(t, "No title found", TitleNotFound)
	assert.Equal(t, "Uncategorized", Uncategorized)
	assert.Equal(t, "Unknown", UnknownAuthor)
}
