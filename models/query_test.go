package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"", CategoryAll, true},
		{"all", CategoryAll, true},
		{"AI", CategoryAI, true},
		{"dev-tools", CategoryDevTools, true},
		{"games", CategoryAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortStars, ParseSort("stars"))
	assert.Equal(t, SortLatest, ParseSort(" Latest "))
	assert.Equal(t, SortScore, ParseSort(""))
	assert.Equal(t, SortScore, ParseSort("random"))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "AI / ML", CategoryAI.Label())
	assert.Equal(t, "Other", Category("nope").Label())
}

func TestQueryWithIsCopy(t *testing.T) {
	base := DefaultQuery()
	changed := base.WithCategory(CategoryGame).WithSearch("rpg").WithSort(SortOldest)

	assert.Equal(t, DefaultQuery(), base)
	assert.Equal(t, Query{Category: CategoryGame, Sort: SortOldest, Search: "rpg"}, changed)
}

func TestQueryNormalize(t *testing.T) {
	q := Query{Category: "bogus", Sort: ""}.Normalize()
	assert.Equal(t, CategoryAll, q.Category)
	assert.Equal(t, SortScore, q.Sort)
}

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		want          PaginationParams
	}{
		{"defaults", 0, 0, PaginationParams{Page: 1, PerPage: DefaultPerPage}},
		{"valid", 3, 50, PaginationParams{Page: 3, PerPage: 50}},
		{"per page too large", 2, 500, PaginationParams{Page: 2, PerPage: DefaultPerPage}},
		{"page capped", 5000, 10, PaginationParams{Page: MaxPage, PerPage: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPaginationParams(tt.page, tt.perPage))
		})
	}

	assert.Equal(t, 60, NewPaginationParams(3, 30).Offset())
}
