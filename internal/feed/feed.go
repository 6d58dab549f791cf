// Package feed fetches and normalizes arXiv RSS listings.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one normalized paper listing.
type Entry struct {
	ID       string // feed guid, falling back to the link
	Title    string
	Authors  string // already joined for display
	Link     string
	Abstract string
}

// Client fetches subject feeds from an arXiv RSS endpoint.
type Client struct {
	baseURL string
	parser  *gofeed.Parser
}

// NewClient creates a feed client for baseURL (e.g.
// "https://export.arxiv.org/rss/") with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		parser:  parser,
	}
}

// Fetch returns the normalized entries for one arXiv subject such as
// "stat.ME" or "econ.EM".
func (c *Client) Fetch(ctx context.Context, subject string) ([]Entry, error) {
	url := c.baseURL + subject
	parsed, err := c.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry := Entry{
			ID:       item.GUID,
			Title:    CleanTitle(item.Title),
			Authors:  joinAuthors(item),
			Link:     strings.TrimSpace(item.Link),
			Abstract: CleanAbstract(item.Description),
		}
		if entry.ID == "" {
			entry.ID = entry.Link
		}
		if entry.ID == "" || entry.Title == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func joinAuthors(item *gofeed.Item) string {
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return strings.Join(item.DublinCoreExt.Creator, ", ")
	}
	names := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}
