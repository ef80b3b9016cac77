package utils

import (
	"strings"

	"github.com/xrash/smetrics"
)

// NameSimilarity returns a 0..1 similarity ratio between two names.
// Both inputs are lowercased and trimmed before comparison. The ratio is
// computed from edit distance with substitutions costing 2, which makes it
// equivalent to the classic SequenceMatcher ratio over the combined length.
func NameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	distance := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 1.0 - float64(distance)/float64(total)
}
