// Package handlers exposes the repository store over HTTP with gin.
package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codefossils/fetcher"
	"codefossils/logger"
	"codefossils/models"
)

// MaxSearchLength caps the search parameter, in characters.
const MaxSearchLength = 100

// RepoStore is the read side of the repository store.
type RepoStore interface {
	Query(ctx context.Context, q models.Query, p models.PaginationParams) ([]models.Repository, int, error)
	Stats(ctx context.Context) (map[string]int, error)
}

// Refresher starts background ingestion passes.
type Refresher interface {
	TriggerAsync() error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RepoHandler struct {
	store     RepoStore
	refresher Refresher
	pinger    Pinger
}

// NewRepoHandler creates the API handler. pinger may be nil, in which case
// /health always reports ok.
func NewRepoHandler(store RepoStore, refresher Refresher, pinger Pinger) *RepoHandler {
	return &RepoHandler{
		store:     store,
		refresher: refresher,
		pinger:    pinger,
	}
}

// ParseListQuery reads category, sort and search from the request. Unknown
// categories are ignored and the search text is truncated.
func ParseListQuery(c *gin.Context) models.Query {
	q := models.DefaultQuery()
	if category, ok := models.ParseCategory(c.Query("category")); ok {
		q = q.WithCategory(category)
	}
	q = q.WithSort(models.ParseSort(c.Query("sort")))
	q = q.WithSearch(truncate(c.Query("search"), MaxSearchLength))
	return q
}

// ParsePagination reads page and per_page, clamped to the accepted ranges.
func ParsePagination(c *gin.Context) models.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(models.DefaultPerPage)))
	return models.NewPaginationParams(page, perPage)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// ListRepos handles GET /api/repos
func (h *RepoHandler) ListRepos(c *gin.Context) {
	q := ParseListQuery(c)
	p := ParsePagination(c)

	repos, total, err := h.store.Query(c.Request.Context(), q, p)
	if err != nil {
		logger.Error("Failed to query repositories",
			zap.Error(err),
			zap.String("category", string(q.Category)),
			zap.String("sort", string(q.Sort)),
			zap.String("request_id", RequestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.RepoListResponse{
		Repos:   repos,
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	})
}

// RefreshRepos handles POST /api/repos/refresh
func (h *RepoHandler) RefreshRepos(c *gin.Context) {
	err := h.refresher.TriggerAsync()
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "refresh started"})
	case errors.Is(err, fetcher.ErrRefreshCooldown):
		retryAfter := 0
		var cooldownErr *fetcher.CooldownError
		if errors.As(err, &cooldownErr) {
			retryAfter = int(math.Ceil(cooldownErr.RetryAfter.Seconds()))
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "refresh on cooldown",
			"retry_after": retryAfter,
		})
	case errors.Is(err, fetcher.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "refresh already in progress"})
	default:
		logger.Error("Failed to trigger refresh", zap.Error(err), zap.String("request_id", RequestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Stats handles GET /api/stats
func (h *RepoHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		logger.Error("Failed to load stats", zap.Error(err), zap.String("request_id", RequestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if stats == nil {
		stats = map[string]int{}
	}

	total := 0
	for _, count := range stats {
		total += count
	}
	c.JSON(http.StatusOK, models.StatsResponse{Categories: stats, Total: total})
}

// Health handles GET /health
func (h *RepoHandler) Health(c *gin.Context) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
