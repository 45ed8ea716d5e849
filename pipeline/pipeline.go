// Package pipeline shapes a repository collection for display: filter by
// category and search text, sort, and paginate. Apply and Paginate are pure;
// Browser layers incremental loading and refresh on top of a Backend.
package pipeline

import (
	"sort"
	"strings"

	"codefossils/models"
	"codefossils/scoring"
)

// Apply filters and sorts repos according to q. The input slice is not
// modified. Ties keep their input order.
func Apply(repos []models.Repository, q models.Query) []models.Repository {
	q = q.Normalize()

	out := make([]models.Repository, 0, len(repos))
	for _, r := range repos {
		if MatchesCategory(r, q.Category) && MatchesSearch(r, q.Search) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, less(out, q.Sort))
	return out
}

// MatchesCategory reports whether repo belongs in category c.
func MatchesCategory(repo models.Repository, c models.Category) bool {
	return c == models.CategoryAll || c == "" || scoring.EffectiveCategory(repo) == c
}

// MatchesSearch reports whether the search text appears in the repository's
// name or description (case-insensitive), or in one of its topics. Topics are
// compared as stored, without lowercasing them.
func MatchesSearch(repo models.Repository, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	if strings.Contains(strings.ToLower(repo.Name), s) {
		return true
	}
	if strings.Contains(strings.ToLower(repo.Description), s) {
		return true
	}
	for _, topic := range repo.Topics {
		if strings.Contains(topic, s) {
			return true
		}
	}
	return false
}

func less(repos []models.Repository, key models.SortKey) func(i, j int) bool {
	switch key {
	case models.SortStars:
		return func(i, j int) bool { return repos[i].Stargazers > repos[j].Stargazers }
	case models.SortOldest:
		return func(i, j int) bool { return repos[i].PushedAt.Before(repos[j].PushedAt) }
	case models.SortLatest:
		return func(i, j int) bool { return repos[i].PushedAt.After(repos[j].PushedAt) }
	default:
		return func(i, j int) bool {
			return scoring.EffectiveScore(repos[i]) > scoring.EffectiveScore(repos[j])
		}
	}
}

// Paginate returns the requested page of repos and the total count. Page and
// per-page values are validated with models.NewPaginationParams.
func Paginate(repos []models.Repository, page, perPage int) ([]models.Repository, int) {
	p := models.NewPaginationParams(page, perPage)
	total := len(repos)

	start := p.Offset()
	if start >= total {
		return []models.Repository{}, total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}

	out := make([]models.Repository, end-start)
	copy(out, repos[start:end])
	return out, total
}
