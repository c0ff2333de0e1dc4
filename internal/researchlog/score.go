// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package researchlog

import (
	"math"
	"regexp"
	"strings"
)

// nonWordPattern matches punctuation and symbols stripped during
// normalization. The class is Unicode-aware so non-Latin queries keep
// their words instead of normalizing to empty.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// whitespacePattern collapses runs of whitespace to a single space.
var whitespacePattern = regexp.MustCompile(`\s+`)

// stopWords are common question words excluded from overlap scoring.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"what": true, "how": true, "when": true, "where": true,
	"why": true, "who": true,
}

// normalize lowercases s, replaces punctuation with spaces, and collapses
// whitespace, yielding a canonical form for comparison.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// wordSet tokenizes s into its set of normalized words minus stop words.
func wordSet(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(normalize(s)) {
		if !stopWords[w] {
			words[w] = true
		}
	}
	return words
}

// Score rates how well a past logged query matches a new query, 0-1.
// Exact normalized match scores 1.0, substring containment in either
// direction scores 0.9, and otherwise the score is the fraction of the
// query's words (stop words removed) found in the logged query, boosted by
// 1.2 and capped at 1.0. The overlap is normalized by the query's word
// count alone, a deliberate recall bias: a query fully covered by a logged
// entry's vocabulary scores high even when the entry has many extra words.
func Score(query, loggedQuery string) float64 {
	nq := normalize(query)
	nl := normalize(loggedQuery)
	if nq == "" {
		return 0
	}
	if nq == nl {
		return 1.0
	}
	if strings.Contains(nl, nq) || strings.Contains(nq, nl) {
		return 0.9
	}

	queryWords := wordSet(query)
	loggedWords := wordSet(loggedQuery)
	if len(queryWords) == 0 {
		return 0
	}

	overlap := 0
	for w := range queryWords {
		if loggedWords[w] {
			overlap++
		}
	}
	return math.Min(float64(overlap)/float64(len(queryWords))*1.2, 1.0)
}

// round2 rounds x to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
