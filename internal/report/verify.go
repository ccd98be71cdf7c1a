package report

import (
	"regexp"
	"strings"
)

var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

// VerifyLinks is the verification half of the no-fabrication contract: the
// generative step is advisory only, so every emitted hyperlink is checked
// against the URLs that actually came back from the search tool. Links with
// an unknown URL are stripped down to their text. The second return value is
// false when at least one link had to be stripped.
func VerifyLinks(text string, allowedURLs []string) (string, bool) {
	allowed := make(map[string]struct{}, len(allowedURLs))
	for _, u := range allowedURLs {
		allowed[normalizeURL(u)] = struct{}{}
	}

	clean := true
	out := markdownLink.ReplaceAllStringFunc(text, func(match string) string {
		groups := markdownLink.FindStringSubmatch(match)
		if _, ok := allowed[normalizeURL(groups[2])]; ok {
			return match
		}
		clean = false
		return groups[1]
	})
	return out, clean
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
