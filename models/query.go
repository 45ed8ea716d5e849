package models

import "strings"

// Category is a topical label assigned to a repository.
type Category string

const (
	CategoryAll      Category = "all"
	CategoryWeb      Category = "web"
	CategoryMobile   Category = "mobile"
	CategoryAI       Category = "ai"
	CategoryDevTools Category = "dev-tools"
	CategoryData     Category = "data"
	CategoryGame     Category = "game"
	CategoryOther    Category = "other"
)

// Categories lists every category in display order, starting with the
// "all" pseudo-category.
var Categories = []Category{
	CategoryAll,
	CategoryWeb,
	CategoryMobile,
	CategoryAI,
	CategoryDevTools,
	CategoryData,
	CategoryGame,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryAll:      "All Ideas",
	CategoryWeb:      "Web Apps",
	CategoryMobile:   "Mobile",
	CategoryAI:       "AI / ML",
	CategoryDevTools: "Dev Tools",
	CategoryData:     "Data",
	CategoryGame:     "Games",
	CategoryOther:    "Other",
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryOther]
}

// Valid reports whether c is one of the known categories (including "all").
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory returns the category named s. Empty input means "all".
func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return CategoryAll, true
	}
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return CategoryAll, false
	}
	return c, true
}

// SortKey selects the ordering of a result set.
type SortKey string

const (
	SortScore  SortKey = "score"
	SortStars  SortKey = "stars"
	SortOldest SortKey = "oldest"
	SortLatest SortKey = "latest"
)

// ParseSort maps s to a sort key, defaulting to SortScore.
func ParseSort(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortScore, SortStars, SortOldest, SortLatest:
		return k
	default:
		return SortScore
	}
}

// Query is the browsing state that shapes a result set. It is a value type:
// the With* methods return modified copies.
type Query struct {
	Category Category `json:"category"`
	Sort     SortKey  `json:"sort"`
	Search   string   `json:"search"`
}

// DefaultQuery returns the query a new browsing session starts with.
func DefaultQuery() Query {
	return Query{Category: CategoryAll, Sort: SortScore}
}

func (q Query) WithCategory(c Category) Query {
	q.Category = c
	return q
}

func (q Query) WithSort(s SortKey) Query {
	q.Sort = s
	return q
}

func (q Query) WithSearch(s string) Query {
	q.Search = s
	return q
}

// Normalize fills zero values with defaults.
func (q Query) Normalize() Query {
	if q.Category == "" || !q.Category.Valid() {
		q.Category = CategoryAll
	}
	q.Sort = ParseSort(string(q.Sort))
	return q
}
