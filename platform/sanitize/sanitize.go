// Package sanitize provides text sanitization for user-provided chat content.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Utterance strips markup, collapses runs of whitespace to single spaces and
// truncates to maxRunes (0 disables truncation) on a rune boundary.
func Utterance(s string, maxRunes int) string {
	result := StripHTML(s)
	result = strings.ToValidUTF8(result, "")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	result = strings.TrimSpace(result)

	if maxRunes > 0 && utf8.RuneCountInString(result) > maxRunes {
		runes := []rune(result)
		result = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return result
}
