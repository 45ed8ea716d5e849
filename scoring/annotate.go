package scoring

import "codefossils/models"

// EffectiveScore returns the score attached by the backend, or computes it
// when the record carries none.
func EffectiveScore(repo models.Repository) int {
	if repo.IdeaScore != nil {
		return clamp(*repo.IdeaScore)
	}
	return Score(repo)
}

// EffectiveCategory returns the category attached by the backend, or
// computes it when the record carries none.
func EffectiveCategory(repo models.Repository) models.Category {
	if repo.Category != "" && repo.Category != models.CategoryAll && repo.Category.Valid() {
		return repo.Category
	}
	return Categorize(repo)
}

// Annotate fills in a missing score and category. Values that are already
// present are kept.
func Annotate(repo models.Repository) models.Repository {
	if repo.IdeaScore == nil {
		repo.IdeaScore = models.IntPtr(Score(repo))
	}
	if repo.Category == "" || repo.Category == models.CategoryAll || !repo.Category.Valid() {
		repo.Category = Categorize(repo)
	}
	return repo
}

// AnnotateAll applies Annotate to every repository and returns a new slice.
func AnnotateAll(repos []models.Repository) []models.Repository {
	out := make([]models.Repository, len(repos))
	for i, r := range repos {
		out[i] = Annotate(r)
	}
	return out
}

// Recompute overwrites score and category from metadata. Ingestion uses it so
// stored values always come from the current formulas.
func Recompute(repo models.Repository) models.Repository {
	repo.IdeaScore = models.IntPtr(Score(repo))
	repo.Category = Categorize(repo)
	return repo
}
