// Package models defines the core data structures used throughout the application.
package models

import "time"

// Repository represents a stale GitHub repository ("fossil")
type Repository struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	FullName    string    `db:"full_name" json:"full_name"`
	OwnerLogin  string    `db:"owner_login" json:"owner_login"`
	OwnerAvatar string    `db:"owner_avatar" json:"owner_avatar"`
	HTMLURL     string    `db:"html_url" json:"html_url"`
	Description string    `db:"description" json:"description"`
	Language    string    `db:"language" json:"language"`
	Topics      []string  `db:"topics" json:"topics"`
	Stargazers  int       `db:"stargazers" json:"stargazers_count"`
	Forks       int       `db:"forks" json:"forks_count"`
	PushedAt    time.Time `db:"pushed_at" json:"pushed_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`

	// IdeaScore and Category are computed upstream. A nil score or an empty
	// category means the record was not annotated.
	IdeaScore *int     `db:"idea_score" json:"idea_score,omitempty"`
	Category  Category `db:"category" json:"category,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// RepoListResponse is the body of GET /api/repos
type RepoListResponse struct {
	Repos   []Repository `json:"repos"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// StatsResponse is the body of GET /api/stats
type StatsResponse struct {
	Categories map[string]int `json:"categories"`
	Total      int            `json:"total"`
}

// PaginationParams represents parameters for paginated queries
type PaginationParams struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

const (
	DefaultPerPage = 30
	MaxPerPage     = 100
	MaxPage        = 1000
)

// NewPaginationParams creates a new PaginationParams with validated values.
// Pages below 1 become 1 and are capped at MaxPage; a per-page size outside
// 1..MaxPerPage falls back to DefaultPerPage.
func NewPaginationParams(page, perPage int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return PaginationParams{
		Page:    page,
		PerPage: perPage,
	}
}

// Offset returns the number of rows to skip for the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}
