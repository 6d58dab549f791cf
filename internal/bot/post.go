package bot

import (
	"strings"

	"github.com/apoorvalal/bsky-paperbot/internal/feed"
)

const (
	// maxPostRunes leaves room for the suffix within Bluesky's 300-grapheme
	// post limit.
	maxPostRunes = 296
	postSuffix   = "\n\U0001F4C8\U0001F916" // chart + robot
)

// composeText builds the post body: title, link, and as much of the abstract
// as fits, flattened to one line with the emoji suffix on its own line.
func composeText(entry feed.Entry) string {
	body := entry.Title + "\n" + entry.Link + "\n" + entry.Abstract
	runes := []rune(body)
	if len(runes) > maxPostRunes {
		runes = runes[:maxPostRunes]
	}
	flat := strings.ReplaceAll(string(runes), "\n", " ")
	return strings.TrimSpace(flat) + postSuffix
}
