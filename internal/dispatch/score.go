package dispatch

import "github.com/lithammer/fuzzysearch/fuzzy"

// Score rates how well query matches candidate on a 0-100 scale.
// Callers lower-case inputs beforehand. A query matching as a
// subsequence of the candidate scores 100; otherwise the score is the
// normalized edit similarity. An empty pair scores 100, an empty side 0.
func Score(query, candidate string) int {
	lq, lc := len([]rune(query)), len([]rune(candidate))
	if lq == 0 && lc == 0 {
		return 100
	}
	if lq == 0 || lc == 0 {
		return 0
	}
	if fuzzy.Match(query, candidate) {
		return 100
	}
	max := lq
	if lc > max {
		max = lc
	}
	dist := fuzzy.LevenshteinDistance(query, candidate)
	return (max - dist) * 100 / max
}
