// Package text prepares raw document text for token-level analysis.
//
// Only the ASCII punctuation set is stripped and lowercasing is not
// locale-aware, so "«quoted»" keeps its guillemets and Turkish dotted/dotless
// i fold the Go way. Embedding-based scoring does its own tokenization and
// does not use this package.
package text

import "strings"

// asciiPunctuation is the ASCII punctuation set: !"#$%&'()*+,-./:;<=>?@[\]^_`{|}~
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var punctStripper = buildStripper()

func buildStripper() *strings.Replacer {
	pairs := make([]string, 0, 2*len(asciiPunctuation))
	for _, r := range asciiPunctuation {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}

// Normalize lowercases text, removes ASCII punctuation, and splits the
// result on whitespace. Punctuation is deleted, not replaced, so "don't"
// becomes "dont".
func Normalize(s string) []string {
	return strings.Fields(punctStripper.Replace(strings.ToLower(s)))
}
