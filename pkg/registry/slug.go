package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// slugPunct is removed from every word of a key.
const slugPunct = "\t!\"#$%&'()*-/<=>?@[\\]^_`{|},."

// Slug turns a display name into a counter key: words are NFKD-normalised,
// stripped of punctuation and combining marks, lower-cased and joined with
// "_" ("Test 1" → "test_1").
func Slug(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = strings.Map(func(r rune) rune {
			if strings.ContainsRune(slugPunct, r) || unicode.Is(unicode.Mn, r) {
				return -1
			}
			return unicode.ToLower(r)
		}, norm.NFKD.String(w))
	}
	return strings.Join(words, "_")
}
