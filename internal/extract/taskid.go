package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// taskIDPattern matches a task identifier at the very start of a commit
// message: letters, an optional hyphen and digits (ABC-123, TASK123), or a
// bare digit run (4521). Character classes are spelled out instead of using
// (?i) so Unicode case folding cannot admit K (Kelvin) or ſ.
var taskIDPattern = regexp.MustCompile(`^([A-Za-z]+-?[0-9]+|[0-9]+)`)

// hashPattern matches link text that is just an abbreviated or full commit SHA.
var hashPattern = regexp.MustCompile(`^[A-Fa-f0-9]{7,40}$`)

// minMessageLength is the shortest link text accepted as a commit message
// before looking elsewhere for it.
const minMessageLength = 10

// MatchTaskID returns the uppercased task ID leading message, if any.
func MatchTaskID(message string) (string, bool) {
	m := taskIDPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// NormalizeMessage collapses every whitespace run to a single space and
// trims both ends.
func NormalizeMessage(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// trim removes surrounding whitespace with the same definition NormalizeMessage uses.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// isSpace matches the whitespace and line terminator characters a browser
// strips and collapses: tab, line feed, vertical tab, form feed, carriage
// return, the Zs category, BOM and the two Unicode line separators. NEL
// (U+0085) is not whitespace here.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// looksLikeHash reports whether text is a bare 7-40 character hex SHA.
func looksLikeHash(text string) bool {
	return hashPattern.MatchString(text)
}

// needsContainerLookup reports whether a commit link's own text is too weak
// to be the message: shorter than minMessageLength or a bare hash.
func needsContainerLookup(text string) bool {
	return utf8.RuneCountInString(text) < minMessageLength || looksLikeHash(text)
}
