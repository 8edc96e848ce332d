package normalize

import (
	"regexp"
	"strings"
)

// Constants for canonicalization heuristics
const (
	// MinTokenLength is the shortest normalized label worth resolving.
	MinTokenLength = 2
)

var (
	disallowedRe = regexp.MustCompile(`[^\w\s@#-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	extensionRe  = regexp.MustCompile(`\.[A-Za-z0-9]{1,4}$`)
)

// stopTokens are labels too generic to be useful as entities: articles,
// browser chrome, and known placeholder strings.
var stopTokens = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"to": {}, "in": {}, "on": {}, "for": {}, "with": {}, "at": {},
	"new tab": {}, "home": {}, "page": {}, "tab": {}, "window": {},
	"http": {}, "https": {}, "www": {}, "com": {}, "org": {},
	"untitled": {}, "unknown": {}, "null": {}, "undefined": {},
	"none": {}, "n-a": {}, "na": {}, "misc": {}, "other": {},
	"stuff": {}, "things": {}, "item": {}, "test": {},
}

// Label turns a raw label into its canonical comparable token: lowercased,
// trimmed, leading @ stripped, characters outside [word, space, @, #, hyphen]
// removed, whitespace collapsed. Idempotent and deterministic; used both for
// node id generation and for all similarity comparisons.
func Label(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "@")
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Underscores maps underscore-delimited tokens to space-delimited form so
// "machine_learning" and "machine learning" compare equal.
func Underscores(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// IsStopToken reports whether a normalized label is in the stop-list.
func IsStopToken(normalized string) bool {
	_, ok := stopTokens[normalized]
	return ok
}

// LooksLikePath reports whether a raw label looks like a file path or a
// filename with a short extension suffix. Such labels are noise from window
// titles and are rejected before resolution.
func LooksLikePath(raw string) bool {
	if strings.ContainsAny(raw, `/\`) {
		return true
	}
	return extensionRe.MatchString(strings.TrimSpace(raw))
}

// ContainsWholeWord reports whether needle appears as a whitespace-delimited
// word inside haystack.
func ContainsWholeWord(haystack, needle string) bool {
	for _, word := range strings.Fields(haystack) {
		if word == needle {
			return true
		}
	}
	return false
}
