package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// Older arXiv feeds append "(arXiv:2301.00001v1 [stat.ME])" to titles.
	titleSuffixRE = regexp.MustCompile(`\s*\(arXiv:[^)]*\)\s*$`)

	// Current arXiv descriptions open with an announce preamble before the
	// abstract proper.
	announceRE = regexp.MustCompile(`^arXiv:\S+\s+Announce Type:\s*\S+\s*`)

	abstractPrefixRE = regexp.MustCompile(`^Abstract:\s*`)
)

// CleanTitle strips the arXiv identifier suffix and surrounding whitespace.
func CleanTitle(title string) string {
	return strings.TrimSpace(titleSuffixRE.ReplaceAllString(title, ""))
}

// CleanAbstract strips HTML markup and the arXiv announce preamble from a
// feed description, leaving the abstract text.
func CleanAbstract(description string) string {
	text := stripHTML(description)
	text = strings.TrimSpace(text)
	text = announceRE.ReplaceAllString(text, "")
	text = abstractPrefixRE.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// Malformed markup: fall back to the raw text rather than dropping
		// the entry.
		return s
	}
	return doc.Text()
}
