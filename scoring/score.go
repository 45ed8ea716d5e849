// Package scoring turns raw repository metadata into an idea score, a
// category and relative age labels. Both the ingestion path and the browsing
// client use it, so the formulas live in exactly one place.
package scoring

import (
	"math"
	"unicode/utf8"

	"codefossils/models"
)

const (
	MinScore = 0
	MaxScore = 100

	starWeight        = 8
	forkWeight        = 4
	descriptionBonus  = 10
	descriptionCap    = 120
	descriptionDivide = 12.0
	topicsBonus       = 5
)

// Input holds the fields the idea score depends on.
type Input struct {
	Stars       int
	Forks       int
	Description string
	Topics      []string
}

// InputOf extracts the scoring input from a repository.
func InputOf(repo models.Repository) Input {
	return Input{
		Stars:       repo.Stargazers,
		Forks:       repo.Forks,
		Description: repo.Description,
		Topics:      repo.Topics,
	}
}

// Compute returns the idea score for in, always within [MinScore, MaxScore].
func Compute(in Input) int {
	stars := math.Max(float64(in.Stars), 0)
	forks := math.Max(float64(in.Forks), 0)

	descLen := utf8.RuneCountInString(in.Description)
	if descLen > descriptionCap {
		descLen = descriptionCap
	}

	raw := math.Log2(stars+1)*starWeight +
		math.Log2(forks+1)*forkWeight +
		float64(descLen)/descriptionDivide
	if in.Description != "" {
		raw += descriptionBonus
	}
	if len(in.Topics) > 0 {
		raw += topicsBonus
	}

	return clamp(int(math.Round(raw)))
}

// Score returns the idea score computed from the repository's metadata,
// ignoring any value already attached to it.
func Score(repo models.Repository) int {
	return Compute(InputOf(repo))
}

func clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Tier buckets a score for display.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// TierOf maps a score to its display tier: >=70 high, >=40 medium.
func TierOf(score int) Tier {
	switch {
	case score >= 70:
		return TierHigh
	case score >= 40:
		return TierMedium
	default:
		return TierLow
	}
}
