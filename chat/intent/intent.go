// Package intent classifies user messages as catalog-search intent or
// general queries. It is deterministic and side-effect free.
package intent

import (
	"regexp"
	"strings"
)

// Patterns are tried in order; the first match wins. Each captures the
// remainder of the message after the trigger phrase.
var searchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bshow me\s+(.+)`),
	regexp.MustCompile(`(?i)\blooking for\s+(.+)`),
	regexp.MustCompile(`(?i)\bsearch for\s+(.+)`),
	regexp.MustCompile(`(?i)\bfind\s+(.+)`),
	regexp.MustCompile(`(?i)\bdo you have\s+(.+)`),
}

// ExtractSearchTerms returns the search terms captured from a message that
// expresses product-search intent, trimmed of surrounding whitespace. The
// second return is false when no pattern matches.
func ExtractSearchTerms(message string) (string, bool) {
	for _, pattern := range searchPatterns {
		m := pattern.FindStringSubmatch(message)
		if len(m) != 2 {
			continue
		}
		terms := strings.TrimSpace(m[1])
		if terms == "" {
			continue
		}
		return terms, true
	}
	return "", false
}
