package scoring

import (
	"regexp"
	"strings"

	"codefossils/models"
)

type categoryRule struct {
	category models.Category
	pattern  *regexp.Regexp
}

// categoryRules is evaluated top to bottom and the first match wins, so the
// order decides overlaps such as "react" + "ai" (web).
var categoryRules = []categoryRule{
	{models.CategoryWeb, regexp.MustCompile(`\b(react|vue|angular|svelte|next|nuxt|web\s?app|frontend|dashboard|website|html|css|django|flask|rails|express)\b`)},
	{models.CategoryMobile, regexp.MustCompile(`\b(ios|android|flutter|react.native|swift|kotlin|mobile)\b`)},
	{models.CategoryAI, regexp.MustCompile(`\b(machine.learning|deep.learning|neural|nlp|gpt|llm|ai|ml|tensorflow|pytorch|model|transformer|diffusion)\b`)},
	{models.CategoryDevTools, regexp.MustCompile(`\b(cli|sdk|api|library|framework|plugin|extension|tool|linter|compiler|devtool|package)\b`)},
	{models.CategoryData, regexp.MustCompile(`\b(data|analytics|scraper|crawler|etl|pipeline|database|visualization|chart)\b`)},
	{models.CategoryGame, regexp.MustCompile(`\b(game|unity|godot|phaser|rpg|puzzle|arcade|gameplay)\b`)},
}

// Categorize classifies a repository by keywords found in its name,
// description, topics and language. It never returns models.CategoryAll.
func Categorize(repo models.Repository) models.Category {
	return CategorizeText(repo.Name, repo.Description, repo.Topics, repo.Language)
}

// CategorizeText is Categorize over the individual fields.
func CategorizeText(name, description string, topics []string, language string) models.Category {
	haystack := strings.ToLower(name + " " + description + " " + strings.Join(topics, " ") + " " + language)

	for _, rule := range categoryRules {
		if rule.pattern.MatchString(haystack) {
			return rule.category
		}
	}
	return models.CategoryOther
}
