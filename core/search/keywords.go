package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// punct strips everything that is not a word character, whitespace, or a
// Han ideograph before tokenizing.
var punct = regexp.MustCompile(`[^\w\s\p{Han}]`)

// ExtractKeywords tokenizes text into lower-cased keywords for indexing.
// Tokens shorter than two runes carry too little signal and are dropped.
// Results are deduplicated and sorted.
func ExtractKeywords(text string) []string {
	cleaned := punct.ReplaceAllString(strings.ToLower(text), " ")

	set := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		set[tok] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
