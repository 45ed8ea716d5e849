// Package github discovers stale repositories through the GitHub search API.
package github

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	gh "github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"codefossils/logger"
	"codefossils/models"
)

const (
	// QueriesPerRun is how many seed queries a single fetch uses.
	QueriesPerRun = 3
	// ResultsPerQuery is the search page size.
	ResultsPerQuery = 30
	// StaleYears is how long a repository must have gone without a push.
	StaleYears = 2
	minStars   = 5

	searchSpacing = 2 * time.Second
)

// ErrRateLimited is returned when GitHub refuses a search because the
// request quota is exhausted.
var ErrRateLimited = errors.New("github rate limit hit")

// SeedQueries are the search phrases that tend to surface abandoned ideas.
var SeedQueries = []string{
	"abandoned project",
	"prototype NOT maintained",
	"experiment NOT fork",
	"proof of concept",
	"hackathon project",
	"side project",
	"weekend project",
	"toy project idea",
	"mvp startup",
	"concept app",
}

// Client searches GitHub for stale repositories.
type Client struct {
	rest    *gh.Client
	limiter *rate.Limiter
	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithShuffle replaces the function used to pick seed queries.
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(c *Client) { c.shuffle = fn }
}

// WithClock replaces the clock used to compute the staleness cutoff.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLimiter paces search requests.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithHTTPClient uses hc for API calls in place of the token client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.rest = gh.NewClient(hc) }
}

// NewClient creates a search client. An empty token uses the anonymous quota.
func NewClient(token string, opts ...Option) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	c := &Client{
		rest:    gh.NewClient(httpClient),
		// One run's searches go out at once; back-to-back runs wait for tokens.
		limiter: rate.NewLimiter(rate.Every(searchSpacing), QueriesPerRun),
		shuffle: rand.Shuffle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	logger.Info("Initializing GitHub client",
		zap.String("base_url", c.rest.BaseURL.String()),
		zap.Bool("authenticated", token != ""))
	return c
}

// SearchQuery builds the search expression for a seed phrase.
func SearchQuery(seed string, now time.Time) string {
	cutoff := now.AddDate(-StaleYears, 0, 0).Format("2006-01-02")
	return fmt.Sprintf("%s pushed:<%s stars:>%d", seed, cutoff, minStars)
}

func (c *Client) pickQueries() []string {
	shuffled := make([]string, len(SeedQueries))
	copy(shuffled, SeedQueries)
	c.shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:QueriesPerRun]
}

// FetchStaleRepos runs a few random seed searches and returns the unique
// repositories found, unscored. A rate-limit response ends the run early:
// the repositories collected so far are returned together with
// ErrRateLimited. Other per-query failures are logged and skipped.
func (c *Client) FetchStaleRepos(ctx context.Context) ([]models.Repository, error) {
	now := c.now()
	seen := make(map[int64]bool)
	var repos []models.Repository

	for _, seed := range c.pickQueries() {
		if err := c.limiter.Wait(ctx); err != nil {
			return repos, fmt.Errorf("rate limiter wait: %w", err)
		}

		query := SearchQuery(seed, now)
		opts := &gh.SearchOptions{
			Sort:        "stars",
			Order:       "desc",
			ListOptions: gh.ListOptions{PerPage: ResultsPerQuery},
		}

		result, _, err := c.rest.Search.Repositories(ctx, query, opts)
		if err != nil {
			if isRateLimit(err) {
				logger.Warn("GitHub rate limit hit, stopping fetch",
					zap.String("query", seed),
					zap.Int("collected", len(repos)))
				return repos, fmt.Errorf("%w: %v", ErrRateLimited, err)
			}
			if ctx.Err() != nil {
				return repos, ctx.Err()
			}
			logger.Error("Search query failed",
				zap.Error(err),
				zap.String("query", seed))
			continue
		}

		added := 0
		for _, item := range result.Repositories {
			if item == nil || seen[item.GetID()] {
				continue
			}
			seen[item.GetID()] = true
			repos = append(repos, toModel(item))
			added++
		}

		logger.Info("Fetched repositories for query",
			zap.String("query", seed),
			zap.Int("results", len(result.Repositories)),
			zap.Int("new", added))
	}

	logger.Info("Total unique repositories fetched", zap.Int("count", len(repos)))
	return repos, nil
}

func isRateLimit(err error) bool {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode == http.StatusForbidden
	}
	return false
}

func toModel(item *gh.Repository) models.Repository {
	topics := item.Topics
	if topics == nil {
		topics = []string{}
	}
	return models.Repository{
		ID:          item.GetID(),
		Name:        item.GetName(),
		FullName:    item.GetFullName(),
		OwnerLogin:  item.GetOwner().GetLogin(),
		OwnerAvatar: item.GetOwner().GetAvatarURL(),
		HTMLURL:     item.GetHTMLURL(),
		Description: item.GetDescription(),
		Language:    item.GetLanguage(),
		Topics:      topics,
		Stargazers:  item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		PushedAt:    item.GetPushedAt().Time,
		CreatedAt:   item.GetCreatedAt().Time,
	}
}
