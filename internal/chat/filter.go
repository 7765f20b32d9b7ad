package chat

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyThreshold is the minimum normalized edit similarity for a passage to
// count as a fuzzy match. Strictly greater-than.
const fuzzyThreshold = 0.6

// isPartialMatch reports whether any lowercase whitespace-delimited token of
// the query occurs as a literal substring of the lowercased passage text.
func isPartialMatch(query, text string) bool {
	lowerText := strings.ToLower(text)
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(lowerText, token) {
			return true
		}
	}
	return false
}

// isFuzzyMatch reports whether the normalized edit similarity between the
// lowercased query and passage text exceeds the threshold.
func isFuzzyMatch(query, text string) bool {
	return similarityRatio(strings.ToLower(query), strings.ToLower(text)) > fuzzyThreshold
}

// similarityRatio is 1 - editDistance/maxLen over the two strings, in [0, 1].
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}

	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// filterPassages applies the two-stage relevance filter to candidates. When
// no candidate matches, the full candidate set comes back unfiltered; an
// empty answer loses to an over-broad one here. The second return reports
// whether the fallback fired.
func filterPassages(query string, candidates []Passage) ([]Passage, bool) {
	matched := make([]Passage, 0, len(candidates))
	for _, p := range candidates {
		if isPartialMatch(query, p.Text) || isFuzzyMatch(query, p.Text) {
			matched = append(matched, p)
		}
	}

	if len(matched) == 0 {
		return candidates, len(candidates) > 0
	}
	return matched, false
}
