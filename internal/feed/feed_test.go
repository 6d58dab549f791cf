package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>stat.ME updates on arXiv.org</title>
<link>http://rss.arxiv.org/rss/stat.ME</link>
<description>stat.ME updates</description>
<item>
<title>A Study of X</title>
<link>https://arxiv.org/abs/2408.01234</link>
<description>arXiv:2408.01234v1 Announce Type: new
Abstract: We study X in considerable depth.</description>
<guid isPermaLink="false">oai:arXiv.org:2408.01234v1</guid>
<dc:creator>A. Smith, B. Jones</dc:creator>
</item>
<item>
<title>Old Style Title. (arXiv:2301.00001v1 [stat.ME])</title>
<link>https://arxiv.org/abs/2301.00001</link>
<description>&lt;p&gt;Paragraph wrapped abstract.&lt;/p&gt;</description>
<guid isPermaLink="false">oai:arXiv.org:2301.00001v1</guid>
<dc:creator>C. Writer</dc:creator>
</item>
<item>
<title></title>
<link>https://arxiv.org/abs/2408.09999</link>
<description>entry without a title is skipped</description>
</item>
</channel>
</rss>`

func TestFetch_ParsesAndNormalizes(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	entries, err := c.Fetch(context.Background(), "stat.ME")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPath != "/stat.ME" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (titleless one skipped), got %d", len(entries))
	}

	first := entries[0]
	if first.ID != "oai:arXiv.org:2408.01234v1" {
		t.Errorf("unexpected id %q", first.ID)
	}
	if first.Title != "A Study of X" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Authors != "A. Smith, B. Jones" {
		t.Errorf("unexpected authors %q", first.Authors)
	}
	if first.Abstract != "We study X in considerable depth." {
		t.Errorf("announce preamble not stripped: %q", first.Abstract)
	}

	second := entries[1]
	if second.Title != "Old Style Title." {
		t.Errorf("arXiv suffix not stripped: %q", second.Title)
	}
	if second.Abstract != "Paragraph wrapped abstract." {
		t.Errorf("html not stripped: %q", second.Abstract)
	}
}

func TestFetch_ErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Fetch(context.Background(), "stat.ME"); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Plain Title", "Plain Title"},
		{"T. (arXiv:2301.00001v1 [stat.ME])", "T."},
		{"  spaced  ", "spaced"},
		{"Uses parens (not arXiv) inside", "Uses parens (not arXiv) inside"},
	}
	for _, tc := range tests {
		if got := CleanTitle(tc.in); got != tc.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanAbstract(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<p>wrapped</p>", "wrapped"},
		{"arXiv:2408.1v1 Announce Type: cross \nAbstract: body here", "body here"},
		{"Abstract: leading label only", "leading label only"},
		{"no markup at all", "no markup at all"},
	}
	for _, tc := range tests {
		if got := CleanAbstract(tc.in); got != tc.want {
			t.Errorf("CleanAbstract(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
