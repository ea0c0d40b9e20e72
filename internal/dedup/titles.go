package dedup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minTitleRunes is the shortest normalized title that is not treated as
// site chrome.
const minTitleRunes = 15

// prefixWords is the length of a title signature in words.
const prefixWords = 6

var punct = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// junkTitles is boilerplate seen on source pages that is never a story:
// navigation labels, subscribe prompts, recurring section headers.
var junkTitles = map[string]bool{
	"current accounts":                 true,
	"crypto investigations":            true,
	"crypto compliance":                true,
	"crypto security fraud":            true,
	"cumulative repo count over time":  true,
	"cumulative star count over time":  true,
	"subscribe":                        true,
	"sign up":                          true,
	"read more":                        true,
	"learn more":                       true,
	"load more":                        true,
	"all posts":                        true,
	"latest posts":                     true,
	"featured":                         true,
	"trending":                         true,
	"popular":                          true,
}

func normalize(title string) string {
	return strings.TrimSpace(punct.ReplaceAllString(strings.ToLower(title), ""))
}

// TitlePrefix reduces a title to its normalized signature: the first six
// alphanumeric words longer than two characters, lowercased, punctuation
// stripped. Near-duplicate headlines across sources collapse to the same
// signature.
func TitlePrefix(title string) string {
	var sig []string
	for _, word := range strings.Fields(normalize(title)) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		sig = append(sig, word)
		if len(sig) == prefixWords {
			break
		}
	}
	return strings.Join(sig, " ")
}

// IsJunk reports whether a title is noise: too short once normalized, or
// a known boilerplate phrase.
func IsJunk(title string) bool {
	norm := normalize(title)
	if utf8.RuneCountInString(norm) < minTitleRunes {
		return true
	}
	return junkTitles[norm] || strings.HasPrefix(norm, "量子位编辑")
}

// SignatureSet holds the title signatures already seen this run. It is
// rebuilt from historical log text on every run and never persisted.
type SignatureSet map[string]struct{}

// Has reports whether a signature is present.
func (s SignatureSet) Has(sig string) bool {
	_, ok := s[sig]
	return ok
}

// Add records a signature. Empty signatures are ignored.
func (s SignatureSet) Add(sig string) {
	if sig != "" {
		s[sig] = struct{}{}
	}
}
