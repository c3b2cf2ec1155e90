// Package topic ranks the most frequent meaningful words across a corpus.
package topic

import (
	"sort"

	"github.com/kailas-cloud/docsim/internal/domain/text"
)

// stopWords is the fixed set of words never reported as topics.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {}, "i": {},
	"you": {}, "we": {}, "she": {}, "her": {}, "his": {}, "him": {},
	"my": {}, "our": {}, "your": {}, "me": {}, "us": {}, "them": {},
	"been": {}, "being": {}, "am": {}, "there": {}, "than": {}, "then": {},
}

// Count is a word and its frequency across the corpus.
type Count struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// IsStopWord reports whether w is excluded from topics.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Top returns at most k of the most frequent non-stopword tokens in corpus.
// Words with equal counts keep the order in which they first appeared.
// An empty corpus or k <= 0 yields an empty, non-nil slice.
func Top(corpus []string, k int) []Count {
	if k <= 0 {
		return []Count{}
	}

	index := make(map[string]int)
	var counts []Count
	for _, doc := range corpus {
		for _, tok := range text.Normalize(doc) {
			if IsStopWord(tok) {
				continue
			}
			if i, ok := index[tok]; ok {
				counts[i].Count++
				continue
			}
			index[tok] = len(counts)
			counts = append(counts, Count{Word: tok, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > k {
		counts = counts[:k]
	}
	if counts == nil {
		return []Count{}
	}
	return counts
}
