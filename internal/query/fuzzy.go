package query

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Policy constants. Values are deliberate; see the classifier and the
// temporal detector for the call sites.
const (
	// ComplexKeywordRatio is the maximum edit distance relative to the
	// keyword length for a word to count as a complexity signal.
	ComplexKeywordRatio = 0.25
	// TemporalMaxDistance caps the allowed edit distance for temporal
	// keyword correction.
	TemporalMaxDistance = 2
)

var complexKeywords = []string{
	"research", "explain", "analyze", "analyse",
	"reason", "compare", "contrast", "evaluate",
}

// temporalKeywords are checked in order; ties on distance keep the
// earlier entry.
var temporalKeywords = []string{
	"yesterday", "today", "tomorrow",
	"last week", "the last week", "past week", "previous week",
	"last month", "the last month", "past month", "previous month",
	"last year", "the last year", "this past year", "past year", "previous year",
	"last thing", "the last thing", "last subject", "last time", "the last time", "last session", "the last session",
	"recently", "recent", "last chat", "last conversation", "last talk", "last discussion",
	"what did we last talk about", "when did we last talk", "what was our last conversation",
}

// MatchesComplex reports whether a single word is within the allowed
// edit-distance ratio of any complexity keyword.
func MatchesComplex(word string) bool {
	if strings.TrimSpace(word) == "" {
		return false
	}

	word = strings.ToLower(word)
	for _, kw := range complexKeywords {
		dist := levenshtein.ComputeDistance(word, kw)
		if float64(dist)/float64(len(kw)) <= ComplexKeywordRatio {
			return true
		}
	}
	return false
}

// ClosestTemporalKeyword returns the temporal keyword nearest to the
// query, or empty when nothing is close enough. Absence of a match is
// an expected outcome, not an error.
func ClosestTemporalKeyword(q string) string {
	if strings.TrimSpace(q) == "" {
		return ""
	}

	q = strings.Join(strings.Fields(trimLower(q)), " ")

	best := ""
	bestDistance := int(^uint(0) >> 1)

	for _, kw := range temporalKeywords {
		dist := levenshtein.ComputeDistance(q, kw)

		allowed := len(kw) / 4
		if allowed < 2 {
			allowed = 2
		}
		if allowed > TemporalMaxDistance {
			allowed = TemporalMaxDistance
		}

		// Strictly smaller distance required to displace an earlier hit.
		if dist <= allowed && dist < bestDistance {
			bestDistance = dist
			best = kw
		}
	}

	return best
}

func trimLower(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
