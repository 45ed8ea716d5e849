package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codefossils/github"
	"codefossils/models"
)

// MockDB is a mock implementation of the database interface
type MockDB struct {
	mock.Mock
}

func (m *MockDB) UpsertBatch(ctx context.Context, repos []models.Repository) (int, error) {
	args := m.Called(ctx, repos)
	return args.Int(0), args.Error(1)
}

// MockGitHubClient is a mock implementation of the GitHub client
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) FetchStaleRepos(ctx context.Context) ([]models.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repository), args.Error(1)
}

func rawRepos() []models.Repository {
	return []models.Repository{
		{ID: 1, Name: "react-dashboard", Stargazers: 100, Description: "a full featured react dashboard", Topics: []string{"web"}},
		{ID: 2, Name: "b", Stargazers: 2, Topics: []string{}},
	}
}

func TestFetchAndStore(t *testing.T) {
	boom := errors.New("boom")

	testCases := []struct {
		name          string
		setupMocks    func(*MockDB, *MockGitHubClient)
		expectedCount int
		expectedError error
	}{
		{
			name: "successful ingestion",
			setupMocks: func(db *MockDB, client *MockGitHubClient) {
				client.On("FetchStaleRepos", mock.Anything).Return(rawRepos(), nil)
				db.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(repos []models.Repository) bool {
					if len(repos) != 2 {
						return false
					}
					for _, r := range repos {
						if r.IdeaScore == nil || r.Category == "" || r.FetchedAt.IsZero() {
							return false
						}
					}
					return *repos[0].IdeaScore == 71 && repos[0].Category == models.CategoryWeb &&
						*repos[1].IdeaScore == 13 && repos[1].Category == models.CategoryOther
				})).Return(2, nil)
			},
			expectedCount: 2,
		},
		{
			name: "nothing found",
			setupMocks: func(db *MockDB, client *MockGitHubClient) {
				client.On("FetchStaleRepos", mock.Anything).Return([]models.Repository{}, nil)
			},
			expectedCount: 0,
		},
		{
			name: "fetch failure with no results",
			setupMocks: func(db *MockDB, client *MockGitHubClient) {
				client.On("FetchStaleRepos", mock.Anything).Return(nil, boom)
			},
			expectedError: boom,
		},
		{
			name: "rate limited part way stores partial results",
			setupMocks: func(db *MockDB, client *MockGitHubClient) {
				client.On("FetchStaleRepos", mock.Anything).Return(rawRepos()[:1], github.ErrRateLimited)
				db.On("UpsertBatch", mock.Anything, mock.Anything).Return(1, nil)
			},
			expectedCount: 1,
			expectedError: github.ErrRateLimited,
		},
		{
			name: "store failure",
			setupMocks: func(db *MockDB, client *MockGitHubClient) {
				client.On("FetchStaleRepos", mock.Anything).Return(rawRepos(), nil)
				db.On("UpsertBatch", mock.Anything, mock.Anything).Return(0, boom)
			},
			expectedError: boom,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := new(MockDB)
			client := new(MockGitHubClient)
			tc.setupMocks(db, client)

			count, err := FetchAndStore(context.Background(), db, client)
			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expectedCount, count)

			db.AssertExpectations(t)
			client.AssertExpectations(t)
		})
	}
}

func TestFetchAndStoreOverwritesUpstreamScores(t *testing.T) {
	db := new(MockDB)
	client := new(MockGitHubClient)

	stale := models.Repository{ID: 9, Name: "b", Stargazers: 2, IdeaScore: models.IntPtr(99), Category: models.CategoryGame}
	client.On("FetchStaleRepos", mock.Anything).Return([]models.Repository{stale}, nil)
	db.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(repos []models.Repository) bool {
		return len(repos) == 1 && *repos[0].IdeaScore == 13 && repos[0].Category == models.CategoryOther
	})).Return(1, nil)

	count, err := FetchAndStore(context.Background(), db, client)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	db.AssertExpectations(t)
}
