// Package keywords holds the topical filter applied to a reel's discoverable
// text before it is accepted for extraction.
package keywords

import "strings"

// Defaults is the built-in Japan-travel keyword list, used when filtering is
// enabled but no override list is configured.
var Defaults = []string{
	"japan", "japanese", "tokyo", "kyoto", "osaka", "hiroshima",
	"shinkansen", "bullet train", "mount fuji", "mt fuji",
	"sushi", "ramen", "sakura", "hanami", "kimono", "yukata",
	"onsen", "ryokan", "shrine", "jinja", "yen",
	"shibuya", "harajuku", "akihabara", "shinjuku", "ginza",
	"suica", "teamlab", "ghibli", "disney",
	"miso", "tempura", "okonomiyaki", "yakitori", "takoyaki",
	"katsu",
}

// NewPredicate builds the accept function for the traversal controller.
// Disabled filtering accepts everything. When enabled, a candidate's text
// must contain at least one keyword (case-insensitive substring match);
// override replaces the default list with the configured one.
func NewPredicate(enabled, override bool, list []string) func(string) bool {
	if !enabled {
		return func(string) bool { return true }
	}

	active := Defaults
	if override && len(list) > 0 {
		active = list
	}

	lowered := make([]string, len(active))
	for i, k := range active {
		lowered[i] = strings.ToLower(strings.TrimSpace(k))
	}

	return func(text string) bool {
		text = strings.ToLower(text)
		for _, k := range lowered {
			if k != "" && strings.Contains(text, k) {
				return true
			}
		}
		return false
	}
}
