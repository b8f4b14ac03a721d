// Package hashtag derives the linked HTML and the tag set of a comment.
package hashtag

import (
	"net/url"
	"regexp"
)

// pattern matches "#" followed by one or more word characters: letters and
// marks of any script, digits and underscore.
var pattern = regexp.MustCompile(`#([\p{L}\p{M}\p{N}_]+)`)

// BrowsePrefix is the path prefix of the tag-browse page.
const BrowsePrefix = "/explore/tags/"

// TagPath returns the tag-browse path for name.
func TagPath(name string) string {
	return BrowsePrefix + url.PathEscape(name) + "/"
}

// Derive returns content with every #tag replaced by an anchor to its
// browse page, and the distinct tag names in first-occurrence order.
// Text outside the tags is passed through unchanged.
func Derive(content string) (string, []string) {
	html := pattern.ReplaceAllStringFunc(content, func(m string) string {
		name := m[1:]
		return `<a href="` + TagPath(name) + `">#` + name + `</a>`
	})
	return html, Extract(content)
}

// Extract returns the distinct tag names in content, case-sensitive.
func Extract(content string) []string {
	matches := pattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
