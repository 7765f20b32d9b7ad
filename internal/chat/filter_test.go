package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPartialMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		text  string
		want  bool
	}{
		{
			name:  "single token matches",
			query: "fire hydrant",
			text:  "Automatic fire hydrant system required",
			want:  true,
		},
		{
			name:  "case insensitive",
			query: "HYDRANT",
			text:  "automatic fire hydrant system",
			want:  true,
		},
		{
			name:  "token inside larger word",
			query: "gym",
			text:  "Gymnasium occupancy limits",
			want:  true,
		},
		{
			name:  "no token present",
			query: "sprinkler",
			text:  "Staircase pressurization requirements",
			want:  false,
		},
		{
			name:  "empty query",
			query: "",
			text:  "anything",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPartialMatch(tt.query, tt.text))
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("abc", "abc"))
	assert.Equal(t, 1.0, similarityRatio("", ""))
	assert.Equal(t, 0.0, similarityRatio("abcd", "wxyz"))

	// One edit over four runes.
	assert.InDelta(t, 0.75, similarityRatio("abcd", "abcx"), 1e-9)
}

func TestIsFuzzyMatch(t *testing.T) {
	// Identical up to a short suffix: similarity well above 0.6.
	assert.True(t, isFuzzyMatch("pressurization of staircase", "pressurization of staircases"))

	// Entirely different text stays below the threshold.
	assert.False(t, isFuzzyMatch("pressurization", "occupancy load factors for mercantile buildings and assembly halls"))
}

func TestFilterPassages(t *testing.T) {
	candidates := []Passage{
		{Text: "Automatic fire hydrant system required", Clause: "5.1", Page: "310"},
		{Text: "Occupancy load factors", Clause: "3.2", Page: "55"},
	}

	t.Run("keeps only matches", func(t *testing.T) {
		got, fellBack := filterPassages("fire hydrant", candidates)
		assert.False(t, fellBack)
		assert.Len(t, got, 1)
		assert.Equal(t, "5.1", got[0].Clause)
	})

	t.Run("falls back to all candidates when nothing matches", func(t *testing.T) {
		got, fellBack := filterPassages("zzzz", candidates)
		assert.True(t, fellBack)
		assert.Equal(t, candidates, got)
	})

	t.Run("no fallback on empty candidate set", func(t *testing.T) {
		got, fellBack := filterPassages("anything", nil)
		assert.False(t, fellBack)
		assert.Empty(t, got)
	})
}
