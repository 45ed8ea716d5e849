package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"codefossils/models"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected int
	}{
		{
			name:     "empty repository",
			input:    Input{},
			expected: 0,
		},
		{
			name:     "one star one fork",
			input:    Input{Stars: 1, Forks: 1},
			expected: 12,
		},
		{
			name:     "description only",
			input:    Input{Description: strings.Repeat("x", 24)},
			expected: 12,
		},
		{
			name:     "description length is capped",
			input:    Input{Description: strings.Repeat("x", 500), Topics: []string{"go"}},
			expected: 25,
		},
		{
			name:     "description length counts characters not bytes",
			input:    Input{Description: strings.Repeat("é", 24)},
			expected: 12,
		},
		{
			name:     "popular documented repository",
			input:    Input{Stars: 100, Description: "a full featured react dashboard", Topics: []string{"web"}},
			expected: 71,
		},
		{
			name:     "clamped at the top",
			input:    Input{Stars: 1 << 40, Forks: 1 << 40, Description: strings.Repeat("x", 120), Topics: []string{"a"}},
			expected: MaxScore,
		},
		{
			name:     "negative counts treated as zero",
			input:    Input{Stars: -50, Forks: -3},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compute(tt.input))
		})
	}
}

func TestComputeBounds(t *testing.T) {
	descriptions := []string{"", "x", strings.Repeat("long ", 100)}
	topicSets := [][]string{nil, {}, {"a", "b"}}

	for stars := 0; stars <= 1_000_000; stars = stars*3 + 1 {
		for forks := 0; forks <= 100_000; forks = forks*5 + 1 {
			for _, d := range descriptions {
				for _, tp := range topicSets {
					s := Compute(Input{Stars: stars, Forks: forks, Description: d, Topics: tp})
					assert.GreaterOrEqual(t, s, MinScore)
					assert.LessOrEqual(t, s, MaxScore)
				}
			}
		}
	}
}

func TestComputeMonotonic(t *testing.T) {
	base := Input{Description: "a tiny experiment", Topics: []string{"toy"}}

	prev := -1
	for stars := 0; stars < 5000; stars += 7 {
		in := base
		in.Stars = stars
		s := Compute(in)
		assert.GreaterOrEqual(t, s, prev, "stars=%d", stars)
		prev = s
	}

	prev = -1
	for forks := 0; forks < 5000; forks += 7 {
		in := base
		in.Forks = forks
		s := Compute(in)
		assert.GreaterOrEqual(t, s, prev, "forks=%d", forks)
		prev = s
	}
}

func TestScoreUsesMetadataOnly(t *testing.T) {
	repo := models.Repository{Stargazers: 2, IdeaScore: models.IntPtr(99)}
	assert.Equal(t, 13, Score(repo))
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierHigh, TierOf(70))
	assert.Equal(t, TierHigh, TierOf(100))
	assert.Equal(t, TierMedium, TierOf(40))
	assert.Equal(t, TierMedium, TierOf(69))
	assert.Equal(t, TierLow, TierOf(39))
	assert.Equal(t, TierLow, TierOf(0))
}
