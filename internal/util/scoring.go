package util

import "github.com/sahilm/fuzzy"

// FuzzyFilter returns the indices of candidates matching input, best match
// first. An empty input keeps every candidate in its original order.
func FuzzyFilter(input string, candidates []string) []int {
	if input == "" {
		out := make([]int, len(candidates))
		for i := range candidates {
			out[i] = i
		}
		return out
	}
	matches := fuzzy.Find(input, candidates)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	return out
}

// ScoreCompletions returns the top n matches for the input string from the candidates list.
func ScoreCompletions(input string, candidates []string, n int) []string {
	idx := FuzzyFilter(input, candidates)
	if len(idx) == 0 {
		return nil
	}
	limit := n
	if n <= 0 || len(idx) < limit {
		limit = len(idx)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = candidates[idx[i]]
	}
	return out
}
