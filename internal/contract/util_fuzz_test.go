package contract

import (
	"strings"
	"testing"
)

// FuzzShouldIgnore fuzzes the ShouldIgnore function with random paths and exclude patterns.
func FuzzShouldIgnore(f *testing.F) {
	seeds := []struct {
		path     string
		excludes string // comma-separated
	}{
		{"cards/retail.yaml", "*.bak.yaml"},
		{"drafts/old/card.yaml", "drafts/"},
		{"cards/{a,b}.json", "**/[a-"},
		{"", ""},
		{"very/long/path/to/card.yml", "**/temp/**"},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.excludes)
	}

	f.Fuzz(func(_ *testing.T, path string, excludesStr string) {
		excludes := []string{}
		if excludesStr != "" {
			for ex := range strings.SplitSeq(excludesStr, ",") {
				if trimmed := strings.TrimSpace(ex); trimmed != "" {
					excludes = append(excludes, trimmed)
				}
			}
		}
		_ = ShouldIgnore(path, excludes)
	})
}

func FuzzTruncateText(f *testing.F) {
	f.Add("auto-decline: credit_score < 500", 10)
	f.Add("", 0)
	f.Add("ÄÖÜ", 2)
	f.Fuzz(func(t *testing.T, text string, width int) {
		got := TruncateText(text, width)
		if width > 3 && len([]rune(got)) > width {
			t.Errorf("TruncateText(%q, %d) = %q is wider than %d", text, width, got, width)
		}
	})
}
