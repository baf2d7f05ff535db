package core

import (
	"regexp"
	"strings"
	"unicode"
)

// yearPattern matches a standalone 4-digit run, interpreted as a release year.
var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// Normalize maps a raw caption to its canonical catalog key.
//
// Every rune that is not a letter, digit, or whitespace is replaced with a
// space, whitespace runs are collapsed, and the result is trimmed. If the
// cleaned text contains a standalone 4-digit run, the first such run is
// removed from the body and re-appended parenthesized: "Title Name (YYYY)".
// Later 4-digit runs stay in the body untouched.
//
// The function is total and deterministic. An empty or punctuation-only
// caption normalizes to the empty string, which is a valid key; rejecting
// it is the caller's call. When the body keeps no further 4-digit run,
// re-normalizing an output returns it unchanged.
func Normalize(caption string) string {
	var b strings.Builder
	b.Grow(len(caption))
	for _, r := range caption {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")

	loc := yearPattern.FindStringIndex(cleaned)
	if loc == nil {
		return cleaned
	}

	year := cleaned[loc[0]:loc[1]]
	body := strings.Join(strings.Fields(cleaned[:loc[0]]+cleaned[loc[1]:]), " ")
	if body == "" {
		return "(" + year + ")"
	}
	return body + " (" + year + ")"
}
