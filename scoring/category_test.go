package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codefossils/models"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		repo     models.Repository
		expected models.Category
	}{
		{
			name:     "web keyword in name",
			repo:     models.Repository{Name: "vue-admin"},
			expected: models.CategoryWeb,
		},
		{
			name:     "web app with optional space",
			repo:     models.Repository{Name: "todo", Description: "A tiny webapp for lists"},
			expected: models.CategoryWeb,
		},
		{
			name:     "earlier group wins on overlap",
			repo:     models.Repository{Name: "react-ai-playground"},
			expected: models.CategoryWeb,
		},
		{
			name:     "mobile via language",
			repo:     models.Repository{Name: "weather", Language: "Kotlin"},
			expected: models.CategoryMobile,
		},
		{
			name:     "ai multi word phrase",
			repo:     models.Repository{Name: "experiments", Description: "Machine learning notebooks"},
			expected: models.CategoryAI,
		},
		{
			name:     "ai via topic",
			repo:     models.Repository{Name: "chatbot", Topics: []string{"llm", "bot"}},
			expected: models.CategoryAI,
		},
		{
			name:     "dev tools",
			repo:     models.Repository{Name: "yaml-linter"},
			expected: models.CategoryDevTools,
		},
		{
			name:     "data",
			repo:     models.Repository{Name: "price-scraper"},
			expected: models.CategoryData,
		},
		{
			name:     "game",
			repo:     models.Repository{Name: "tiny-rpg"},
			expected: models.CategoryGame,
		},
		{
			name:     "keyword inside a longer word does not match",
			repo:     models.Repository{Name: "xhtml2pdf-notes"},
			expected: models.CategoryOther,
		},
		{
			name:     "case insensitive",
			repo:     models.Repository{Name: "GODOT-Platformer"},
			expected: models.CategoryGame,
		},
		{
			name:     "no match falls back to other",
			repo:     models.Repository{Name: "dotfiles", Description: "My personal config", Language: "Shell"},
			expected: models.CategoryOther,
		},
		{
			name:     "empty repository",
			repo:     models.Repository{},
			expected: models.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.repo))
		})
	}
}

func TestCategorizeIsTotalAndDeterministic(t *testing.T) {
	inputs := []models.Repository{
		{Name: "a"},
		{Name: "flask-api", Topics: []string{"python"}},
		{Name: "unity-ml-agents"},
		{Name: "etl-framework"},
	}

	for _, repo := range inputs {
		first := Categorize(repo)
		assert.NotEqual(t, models.CategoryAll, first)
		assert.True(t, first.Valid())
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Categorize(repo))
		}
	}
}

func TestAnnotate(t *testing.T) {
	t.Run("fills missing fields", func(t *testing.T) {
		got := Annotate(models.Repository{Name: "tiny-rpg", Stargazers: 2})
		if assert.NotNil(t, got.IdeaScore) {
			assert.Equal(t, 13, *got.IdeaScore)
		}
		assert.Equal(t, models.CategoryGame, got.Category)
	})

	t.Run("keeps backend values", func(t *testing.T) {
		got := Annotate(models.Repository{Name: "tiny-rpg", IdeaScore: models.IntPtr(42), Category: models.CategoryData})
		assert.Equal(t, 42, *got.IdeaScore)
		assert.Equal(t, models.CategoryData, got.Category)
	})

	t.Run("recompute overwrites", func(t *testing.T) {
		got := Recompute(models.Repository{Name: "tiny-rpg", IdeaScore: models.IntPtr(42), Category: models.CategoryData})
		assert.Equal(t, 0, *got.IdeaScore)
		assert.Equal(t, models.CategoryGame, got.Category)
	})

	t.Run("effective values", func(t *testing.T) {
		repo := models.Repository{Name: "tiny-rpg", IdeaScore: models.IntPtr(150)}
		assert.Equal(t, MaxScore, EffectiveScore(repo))
		assert.Equal(t, models.CategoryGame, EffectiveCategory(repo))
	})
}
