package championship

import "sort"

// Score is a keyed value where lower is better.
type Score struct {
	Key   string
	Value float64
}

// Ranked is a key with its competition rank.
type Ranked struct {
	Key  string
	Rank int
}

// Rank assigns competition ranks ("1224" ranking): ties share a rank and the
// next distinct value takes its 1-based position, so [10 10 20] ranks 1 1 3.
// Equal values keep their input order. scores is not modified.
func Rank(scores []Score) []Ranked {
	sorted := make([]Score, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})

	out := make([]Ranked, len(sorted))
	rank := 1
	for i, s := range sorted {
		if i > 0 && s.Value != sorted[i-1].Value {
			rank = i + 1
		}
		out[i] = Ranked{Key: s.Key, Rank: rank}
	}
	return out
}
