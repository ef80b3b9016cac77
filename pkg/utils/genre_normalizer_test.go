package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRootGenres_MultipleRoots(t *testing.T) {
	roots := ExtractRootGenres("australian garage punk")
	assert.Contains(t, roots, "garage")
	assert.Contains(t, roots, "punk")
}

func TestExtractRootGenres_NoRootFallsBackToWholeLabel(t *testing.T) {
	roots := ExtractRootGenres("Zydeco")
	assert.Equal(t, []string{"zydeco"}, roots)
}

func TestExtractRootGenres_SubstringRoots(t *testing.T) {
	// "indie rock" contains both "indie" and "rock"
	roots := ExtractRootGenres("indie rock")
	assert.Equal(t, []string{"indie", "rock"}, roots)
}

func TestNormalizeGenre(t *testing.T) {
	assert.Equal(t, "dream pop", NormalizeGenre("  Dream Pop "))
}
