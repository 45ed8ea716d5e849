package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"codefossils/logger"
)

func init() {
	_ = logger.Initialize("debug")
}

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func identityShuffle(n int, swap func(i, j int)) {}

// serverTransport sends every request to an httptest server, keeping the path.
type serverTransport struct {
	target *url.URL
}

func (st serverTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = st.target.Scheme
	out.URL.Host = st.target.Host
	out.Host = st.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

// setupMockGitHubServer points a Client at an httptest server.
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	return NewClient("",
		WithHTTPClient(&http.Client{Transport: serverTransport{target: target}}),
		WithShuffle(identityShuffle),
		WithClock(func() time.Time { return fixedNow }),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)))
}

func TestDefaultLimiterAllowsOneRunWithoutWaiting(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, QueriesPerRun, client.limiter.Burst())
	assert.Equal(t, rate.Every(searchSpacing), client.limiter.Limit())

	for i := 0; i < QueriesPerRun; i++ {
		assert.True(t, client.limiter.Allow(), "query %d of a run is not delayed", i+1)
	}
	assert.False(t, client.limiter.Allow(), "the next run waits for tokens")
}

func mockRepo(id int64, name string, stars int) *gh.Repository {
	return &gh.Repository{
		ID:              gh.Int64(id),
		Name:            gh.String(name),
		FullName:        gh.String("someone/" + name),
		Owner:           &gh.User{Login: gh.String("someone"), AvatarURL: gh.String("https://avatars/someone")},
		HTMLURL:         gh.String("https://github.com/someone/" + name),
		Description:     gh.String("a " + name),
		Topics:          []string{"prototype"},
		StargazersCount: gh.Int(stars),
		ForksCount:      gh.Int(1),
		PushedAt:        &gh.Timestamp{Time: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		CreatedAt:       &gh.Timestamp{Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func writeResult(w http.ResponseWriter, repos ...*gh.Repository) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&gh.RepositoriesSearchResult{
		Total:        gh.Int(len(repos)),
		Repositories: repos,
	})
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "side project pushed:<2024-05-10 stars:>5", SearchQuery("side project", fixedNow))
}

func TestFetchStaleRepos(t *testing.T) {
	var queries []string
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "stars", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))

		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		switch {
		case strings.HasPrefix(q, "abandoned project"):
			writeResult(w, mockRepo(1, "alpha", 50), mockRepo(2, "beta", 20))
		case strings.HasPrefix(q, "prototype NOT maintained"):
			writeResult(w, mockRepo(2, "beta", 20), mockRepo(3, "gamma", 9))
		default:
			writeResult(w)
		}
	})

	repos, err := client.FetchStaleRepos(context.Background())
	require.NoError(t, err)

	require.Len(t, queries, QueriesPerRun)
	assert.Equal(t, "abandoned project pushed:<2024-05-10 stars:>5", queries[0])
	assert.Equal(t, "experiment NOT fork pushed:<2024-05-10 stars:>5", queries[2])

	require.Len(t, repos, 3)
	assert.Equal(t, int64(1), repos[0].ID)
	assert.Equal(t, int64(3), repos[2].ID)

	alpha := repos[0]
	assert.Equal(t, "alpha", alpha.Name)
	assert.Equal(t, "someone", alpha.OwnerLogin)
	assert.Equal(t, "https://avatars/someone", alpha.OwnerAvatar)
	assert.Equal(t, 50, alpha.Stargazers)
	assert.Equal(t, []string{"prototype"}, alpha.Topics)
	assert.Nil(t, alpha.IdeaScore, "the client returns unscored records")
}

func TestFetchStaleReposSkipsFailingQuery(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("q"), "abandoned project") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
			return
		}
		writeResult(w, mockRepo(7, "delta", 8))
	})

	repos, err := client.FetchStaleRepos(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, int64(7), repos[0].ID)
}

func TestFetchStaleReposStopsOnRateLimit(t *testing.T) {
	calls := 0
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Forbidden"}`))
			return
		}
		writeResult(w, mockRepo(int64(calls), "repo", 10))
	})

	repos, err := client.FetchStaleRepos(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, calls)
	require.Len(t, repos, 1, "results gathered before the limit are kept")
}

func TestToModelHandlesMissingFields(t *testing.T) {
	repo := toModel(&gh.Repository{ID: gh.Int64(5), Name: gh.String("bare")})

	assert.Equal(t, int64(5), repo.ID)
	assert.Empty(t, repo.Description)
	assert.Empty(t, repo.Language)
	assert.NotNil(t, repo.Topics)
	assert.True(t, repo.PushedAt.IsZero())
}
