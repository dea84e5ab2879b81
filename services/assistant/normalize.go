package assistant

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]+`)

var stopwords = map[string]bool{
	"a": true, "about": true, "am": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "can": true, "could": true, "do": true, "does": true,
	"for": true, "from": true, "get": true, "how": true, "i": true, "if": true, "in": true,
	"is": true, "it": true, "me": true, "my": true, "of": true, "on": true, "or": true,
	"please": true, "should": true, "so": true, "that": true, "the": true, "this": true,
	"to": true, "what": true, "when": true, "where": true, "which": true, "who": true,
	"why": true, "will": true, "with": true, "would": true, "you": true, "your": true,
	"there": true, "some": true, "any": true, "want": true, "need": true, "know": true,
}

// Tokenize lowercases text, strips punctuation, drops stopwords and returns the distinct tokens.
func Tokenize(text string) map[string]bool {
	clean := nonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	tokens := map[string]bool{}
	for _, w := range strings.Fields(clean) {
		if !stopwords[w] {
			tokens[w] = true
		}
	}
	return tokens
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both are empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
