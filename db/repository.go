package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"codefossils/models"
)

const upsertQuery = `
	INSERT INTO repos (
		id, name, full_name, owner_login, owner_avatar, html_url,
		description, language, topics, stargazers, forks,
		pushed_at, created_at, idea_score, category, fetched_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		full_name = EXCLUDED.full_name,
		owner_login = EXCLUDED.owner_login,
		owner_avatar = EXCLUDED.owner_avatar,
		html_url = EXCLUDED.html_url,
		description = EXCLUDED.description,
		language = EXCLUDED.language,
		topics = EXCLUDED.topics,
		stargazers = EXCLUDED.stargazers,
		forks = EXCLUDED.forks,
		pushed_at = EXCLUDED.pushed_at,
		idea_score = EXCLUDED.idea_score,
		category = EXCLUDED.category,
		fetched_at = EXCLUDED.fetched_at
`

const selectColumns = `
	id, name, full_name, owner_login, COALESCE(owner_avatar, ''),
	html_url, COALESCE(description, ''), COALESCE(language, ''),
	topics, stargazers, forks, pushed_at, created_at,
	idea_score, category, fetched_at
`

const countQuery = `SELECT COUNT(*) FROM repos`

const statsQuery = `SELECT category, COUNT(*) FROM repos GROUP BY category`

var orderBy = map[models.SortKey]string{
	models.SortScore:  "idea_score DESC, id ASC",
	models.SortStars:  "stargazers DESC, id ASC",
	models.SortOldest: "pushed_at ASC, id ASC",
	models.SortLatest: "pushed_at DESC, id ASC",
}

func validate(repo models.Repository) error {
	if repo.ID <= 0 {
		return fmt.Errorf("%w: repository id must be positive", ErrInvalidInput)
	}
	if repo.Name == "" || repo.FullName == "" || repo.HTMLURL == "" {
		return fmt.Errorf("%w: repository %d is missing name, full name or url", ErrInvalidInput, repo.ID)
	}
	if repo.IdeaScore == nil || repo.Category == "" {
		return fmt.Errorf("%w: repository %s must be scored before storing", ErrInvalidInput, repo.FullName)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func upsertArgs(repo models.Repository) []interface{} {
	fetchedAt := repo.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}
	return []interface{}{
		repo.ID, repo.Name, repo.FullName, repo.OwnerLogin, nullString(repo.OwnerAvatar),
		repo.HTMLURL, nullString(repo.Description), nullString(repo.Language), pq.Array(topics),
		repo.Stargazers, repo.Forks, repo.PushedAt, repo.CreatedAt,
		*repo.IdeaScore, string(repo.Category), fetchedAt,
	}
}

// Upsert inserts or updates a single scored repository keyed by its GitHub id.
func (db *DB) Upsert(ctx context.Context, repo models.Repository) error {
	if err := validate(repo); err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, upsertQuery, upsertArgs(repo)...); err != nil {
		return fmt.Errorf("failed to upsert repository %d: %w", repo.ID, err)
	}
	return nil
}

// UpsertBatch stores repos in one transaction and returns how many were
// written. Nothing is kept when any row fails.
func (db *DB) UpsertBatch(ctx context.Context, repos []models.Repository) (int, error) {
	if len(repos) == 0 {
		return 0, nil
	}
	for _, repo := range repos {
		if err := validate(repo); err != nil {
			return 0, err
		}
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	for _, repo := range repos {
		if _, err := tx.ExecContext(ctx, upsertQuery, upsertArgs(repo)...); err != nil {
			return 0, fmt.Errorf("%w: failed to upsert repository %d: %v", ErrTransactionFailed, repo.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit transaction: %v", ErrTransactionFailed, err)
	}

	safeLogInfo("Stored repositories", zap.Int("count", len(repos)))
	return len(repos), nil
}

// buildWhere turns the category and search parts of q into a WHERE clause
// with positional arguments.
func buildWhere(q models.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Category != models.CategoryAll {
		args = append(args, string(q.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if q.Search != "" {
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d OR array_to_string(topics, ' ') ILIKE $%d)",
			n, n, n))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Query returns one page of repositories matching q and the total number of
// matches.
func (db *DB) Query(ctx context.Context, q models.Query, p models.PaginationParams) ([]models.Repository, int, error) {
	q = q.Normalize()
	p = models.NewPaginationParams(p.Page, p.PerPage)
	where, args := buildWhere(q)

	var total int
	if err := db.conn.QueryRowxContext(ctx, countQuery+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count repositories: %w", err)
	}

	selectQuery := fmt.Sprintf("SELECT %s FROM repos%s ORDER BY %s LIMIT $%d OFFSET $%d",
		selectColumns, where, orderBy[q.Sort], len(args)+1, len(args)+2)
	args = append(args, p.PerPage, p.Offset())

	rows, err := db.conn.QueryxContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer rows.Close()

	repos, err := scanRepos(rows)
	if err != nil {
		return nil, 0, err
	}
	return repos, total, nil
}

func scanRepos(rows *sqlx.Rows) ([]models.Repository, error) {
	repos := []models.Repository{}
	for rows.Next() {
		var r models.Repository
		var score int
		var category string
		if err := rows.Scan(
			&r.ID, &r.Name, &r.FullName, &r.OwnerLogin, &r.OwnerAvatar,
			&r.HTMLURL, &r.Description, &r.Language,
			pq.Array(&r.Topics), &r.Stargazers, &r.Forks,
			&r.PushedAt, &r.CreatedAt, &score, &category, &r.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		if r.Topics == nil {
			r.Topics = []string{}
		}
		r.IdeaScore = models.IntPtr(score)
		r.Category = models.Category(category)
		repos = append(repos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repositories: %w", err)
	}
	return repos, nil
}

// Stats returns the number of stored repositories per category.
func (db *DB) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryxContext(ctx, statsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		stats[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category stats: %w", err)
	}
	return stats, nil
}

// Count returns the number of stored repositories.
func (db *DB) Count(ctx context.Context) (int, error) {
	stmt, err := db.getStmt(ctx, countQuery)
	if err != nil {
		return 0, err
	}
	var count int
	if err := stmt.QueryRowxContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}
	return count, nil
}
