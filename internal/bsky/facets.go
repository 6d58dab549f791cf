package bsky

import "regexp"

// Facet marks a byte range of post text carrying a richtext feature.
type Facet struct {
	Index    ByteSlice     `json:"index"`
	Features []LinkFeature `json:"features"`
}

// ByteSlice is a UTF-8 byte range into the post text.
type ByteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// LinkFeature is an app.bsky.richtext.facet#link feature.
type LinkFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri"`
}

// Deliberately naive URL pattern; trailing punctuation that commonly follows
// a URL in prose is excluded from the match.
var urlRE = regexp.MustCompile(`(?:^|[\s$|(])(https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_+.~#?&/=]*[-a-zA-Z0-9@%_+~#/=])?)`)

// ParseFacets finds URLs in text and returns link facets with byte offsets,
// as the app.bsky.richtext.facet schema requires.
func ParseFacets(text string) []Facet {
	var facets []Facet
	for _, m := range urlRE.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		facets = append(facets, Facet{
			Index: ByteSlice{ByteStart: start, ByteEnd: end},
			Features: []LinkFeature{{
				Type: "app.bsky.richtext.facet#link",
				URI:  text[start:end],
			}},
		})
	}
	return facets
}
