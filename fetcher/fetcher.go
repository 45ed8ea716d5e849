// Package fetcher runs one ingestion pass: discover stale repositories, score
// and categorize them, and store the result.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codefossils/logger"
	"codefossils/models"
	"codefossils/scoring"
)

// DBInterface defines the database operations needed by the fetcher
type DBInterface interface {
	UpsertBatch(ctx context.Context, repos []models.Repository) (int, error)
}

// GitHubClientInterface defines the GitHub client operations needed by the fetcher
type GitHubClientInterface interface {
	FetchStaleRepos(ctx context.Context) ([]models.Repository, error)
}

// FetchAndStore fetches stale repositories, recomputes their score and
// category, and upserts them. When the fetch fails part way, whatever was
// collected is still stored and the fetch error is returned alongside the
// stored count.
func FetchAndStore(ctx context.Context, database DBInterface, client GitHubClientInterface) (int, error) {
	start := time.Now()

	repos, fetchErr := client.FetchStaleRepos(ctx)
	if fetchErr != nil {
		logger.Warn("Fetch from GitHub ended with error",
			zap.Error(fetchErr),
			zap.Int("collected", len(repos)))
	}

	if len(repos) == 0 {
		if fetchErr != nil {
			return 0, fmt.Errorf("failed to fetch repositories: %w", fetchErr)
		}
		logger.Info("No repositories found")
		return 0, nil
	}

	fetchedAt := time.Now().UTC()
	scored := make([]models.Repository, len(repos))
	for i, repo := range repos {
		repo.FetchedAt = fetchedAt
		scored[i] = scoring.Recompute(repo)
	}

	stored, err := database.UpsertBatch(ctx, scored)
	if err != nil {
		return 0, fmt.Errorf("failed to store repositories: %w", err)
	}

	logger.Info("Ingestion pass complete",
		zap.Int("stored", stored),
		zap.Duration("took", time.Since(start)))

	if fetchErr != nil {
		return stored, fmt.Errorf("failed to fetch repositories: %w", fetchErr)
	}
	return stored, nil
}
