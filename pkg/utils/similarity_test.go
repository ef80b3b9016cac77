package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Radiohead", "radiohead"))
}

func TestNameSimilarity_CaseAndWhitespace(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("  The National ", "the national"))
}

func TestNameSimilarity_Disjoint(t *testing.T) {
	sim := NameSimilarity("abc", "xyz")
	assert.InDelta(t, 0.0, sim, 0.001)
}

func TestNameSimilarity_CloseNames(t *testing.T) {
	// One substitution in an 8-letter pair should still score high
	sim := NameSimilarity("Phoebe Bridgers", "Phoebe Bridges")
	assert.Greater(t, sim, 0.9)
}

func TestNameSimilarity_EmptyInputs(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("", ""))
	assert.Equal(t, 0.0, NameSimilarity("beach house", ""))
}
