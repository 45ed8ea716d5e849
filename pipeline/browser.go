package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"codefossils/logger"
	"codefossils/models"
	"codefossils/scoring"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 5
)

// ErrStaleResponse is returned when a response arrives for a query that has
// since been replaced. The response is dropped.
var ErrStaleResponse = errors.New("response superseded by a newer request")

// State is a snapshot of a Browser for rendering.
type State struct {
	Query       models.Query
	Repos       []models.Repository
	Total       int
	Page        int
	HasMore     bool
	Loading     bool
	LoadingMore bool
	Refreshing  bool
	Err         string
}

// Option configures a Browser.
type Option func(*Browser)

// WithPerPage sets the page size requested from the backend.
func WithPerPage(n int) Option {
	return func(b *Browser) {
		if n > 0 {
			b.perPage = n
		}
	}
}

// WithPollInterval sets the delay between refresh polls.
func WithPollInterval(d time.Duration) Option {
	return func(b *Browser) {
		if d >= 0 {
			b.pollInterval = d
		}
	}
}

// WithMaxPolls sets how many listing polls a refresh makes at most.
func WithMaxPolls(n int) Option {
	return func(b *Browser) {
		if n > 0 {
			b.maxPolls = n
		}
	}
}

// WithSleep replaces the function used to wait between refresh polls.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(b *Browser) {
		if fn != nil {
			b.sleep = fn
		}
	}
}

// Browser owns the accumulated result list of one browsing session.
//
// Every request records the generation it was issued under. Query changes,
// reloads and completed refreshes bump the generation, so a response that
// arrives late for an older query is discarded instead of overwriting newer
// state.
type Browser struct {
	backend      Backend
	perPage      int
	pollInterval time.Duration
	maxPolls     int
	sleep        func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	query       models.Query
	gen         uint64
	repos       []models.Repository
	total       int
	page        int
	loading     bool
	loadingMore bool
	refreshing  bool
	errMsg      string
}

// NewBrowser creates a Browser with the default query. Nothing is fetched
// until Load or one of the Set methods is called.
func NewBrowser(backend Backend, opts ...Option) *Browser {
	b := &Browser{
		backend:      backend,
		perPage:      models.DefaultPerPage,
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
		sleep:        sleepContext,
		query:        models.DefaultQuery(),
		page:         1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load fetches the first page for the current query and replaces the list.
func (b *Browser) Load(ctx context.Context) error {
	return b.reload(ctx, nil)
}

// Retry reloads the first page after an error.
func (b *Browser) Retry(ctx context.Context) error {
	return b.reload(ctx, nil)
}

// SetQuery switches to q. When q differs from the current query the list and
// cursor are reset and the first page is fetched again.
func (b *Browser) SetQuery(ctx context.Context, q models.Query) error {
	q = q.Normalize()

	b.mu.Lock()
	same := q == b.query
	b.mu.Unlock()
	if same {
		return nil
	}

	return b.reload(ctx, func() {
		b.query = q
	})
}

func (b *Browser) SetCategory(ctx context.Context, c models.Category) error {
	return b.SetQuery(ctx, b.Query().WithCategory(c))
}

func (b *Browser) SetSort(ctx context.Context, s models.SortKey) error {
	return b.SetQuery(ctx, b.Query().WithSort(s))
}

func (b *Browser) SetSearch(ctx context.Context, s string) error {
	return b.SetQuery(ctx, b.Query().WithSearch(s))
}

func (b *Browser) reload(ctx context.Context, mutate func()) error {
	b.mu.Lock()
	if mutate != nil {
		mutate()
	}
	b.gen++
	gen := b.gen
	q := b.query
	b.repos = nil
	b.total = 0
	b.page = 1
	b.loading = true
	b.loadingMore = false
	b.errMsg = ""
	b.mu.Unlock()

	resp, err := b.backend.ListRepos(ctx, q, 1, b.perPage)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		return ErrStaleResponse
	}
	b.loading = false
	if err != nil {
		b.fail("Failed to fetch repos", err)
		return err
	}

	b.repos = scoring.AnnotateAll(resp.Repos)
	b.total = resp.Total
	b.page = 1
	return nil
}

// LoadMore appends the next page. It reports false without fetching when a
// load is already in flight, when the session is in an error state, or when
// every reachable result has been loaded. Backends clamp pages above
// models.MaxPage, so paging ends there.
func (b *Browser) LoadMore(ctx context.Context) (bool, error) {
	b.mu.Lock()
	if b.loading || b.loadingMore || b.errMsg != "" || len(b.repos) >= b.total {
		b.mu.Unlock()
		return false, nil
	}
	if b.page >= models.MaxPage {
		b.total = len(b.repos)
		b.mu.Unlock()
		return false, nil
	}
	b.loadingMore = true
	gen := b.gen
	q := b.query
	next := b.page + 1
	b.mu.Unlock()

	resp, err := b.backend.ListRepos(ctx, q, next, b.perPage)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		return false, ErrStaleResponse
	}
	b.loadingMore = false
	if err != nil {
		b.fail("Failed to load more repos", err)
		return false, err
	}

	if resp.Page != 0 && resp.Page != next {
		// Served a different page than asked for; appending would duplicate.
		b.total = len(b.repos)
		return false, nil
	}

	b.repos = append(b.repos, scoring.AnnotateAll(resp.Repos)...)
	b.total = resp.Total
	if len(resp.Repos) == 0 {
		// The backend shrank under us; stop paging.
		b.total = len(b.repos)
	}
	b.page = next
	return true, nil
}

// Refresh asks the backend to re-ingest, then polls the first page until the
// total changes or the poll budget runs out, and finally replaces the list
// with the last page fetched. Completion only means the wait is over, not
// that new data arrived. A failing poll ends the refresh quietly.
func (b *Browser) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if b.refreshing {
		b.mu.Unlock()
		return nil
	}
	b.refreshing = true
	gen := b.gen
	q := b.query
	before := b.total
	b.mu.Unlock()

	if err := b.backend.TriggerRefresh(ctx); err != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.refreshing = false
		if gen == b.gen {
			b.fail("Failed to trigger refresh", err)
		}
		return err
	}

	var latest *models.RepoListResponse
	for attempt := 1; attempt <= b.maxPolls; attempt++ {
		if err := b.sleep(ctx, b.pollInterval); err != nil {
			b.endRefresh()
			return err
		}

		resp, err := b.backend.ListRepos(ctx, q, 1, b.perPage)
		if err != nil {
			logger.Warn("Refresh poll failed, giving up",
				zap.Error(err),
				zap.Int("attempt", attempt))
			b.endRefresh()
			return nil
		}
		latest = resp

		if resp.Total != before {
			logger.Debug("Refresh observed new total",
				zap.Int("before", before),
				zap.Int("after", resp.Total),
				zap.Int("attempt", attempt))
			break
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshing = false

	if latest == nil {
		return nil
	}
	if gen != b.gen {
		return ErrStaleResponse
	}

	b.gen++
	b.repos = scoring.AnnotateAll(latest.Repos)
	b.total = latest.Total
	b.page = 1
	b.loading = false
	b.loadingMore = false
	b.errMsg = ""
	return nil
}

func (b *Browser) endRefresh() {
	b.mu.Lock()
	b.refreshing = false
	b.mu.Unlock()
}

// fail records a user-facing error. Callers hold b.mu.
func (b *Browser) fail(msg string, err error) {
	b.errMsg = fmt.Sprintf("%s: %v", msg, err)
	b.repos = nil
	b.total = 0
	b.page = 1
}

// HasMore reports whether more results exist beyond those loaded.
func (b *Browser) HasMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.repos) < b.total
}

// Query returns the current query.
func (b *Browser) Query() models.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// View returns a snapshot for rendering. Results are withheld while an error
// is set.
func (b *Browser) View() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := State{
		Query:       b.query,
		Total:       b.total,
		Page:        b.page,
		HasMore:     len(b.repos) < b.total,
		Loading:     b.loading,
		LoadingMore: b.loadingMore,
		Refreshing:  b.refreshing,
		Err:         b.errMsg,
	}
	if b.errMsg == "" {
		s.Repos = make([]models.Repository, len(b.repos))
		copy(s.Repos, b.repos)
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
