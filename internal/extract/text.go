package extract

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	nonKeyPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// PlainText strips markup tags, decodes entities and collapses whitespace.
// Unbalanced or broken markup is tolerated.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	value := tagPattern.ReplaceAllString(fragment, " ")
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

// NormalizeForKey lowercases value and reduces it to space separated
// alphanumeric tokens. Accented letters are folded to their base letter.
func NormalizeForKey(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	value = foldMarks(value)
	value = nonKeyPattern.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func foldMarks(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// Truncate returns at most max runes of value.
func Truncate(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	count := 0
	for idx := range value {
		if count == max {
			return value[:idx]
		}
		count++
	}
	return value
}
