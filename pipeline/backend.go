package pipeline

import (
	"context"
	"sync"

	"codefossils/models"
	"codefossils/scoring"
)

// Backend is the listing service a Browser pages through.
type Backend interface {
	ListRepos(ctx context.Context, q models.Query, page, perPage int) (*models.RepoListResponse, error)
	TriggerRefresh(ctx context.Context) error
}

// LocalBackend serves a fixed in-memory collection through Apply and
// Paginate. Records without a score or category are annotated on the way in.
type LocalBackend struct {
	mu     sync.RWMutex
	repos  []models.Repository
	reload func(ctx context.Context) ([]models.Repository, error)
}

// NewLocalBackend returns a backend over repos. reload, when non-nil, is
// called by TriggerRefresh to replace the collection.
func NewLocalBackend(repos []models.Repository, reload func(ctx context.Context) ([]models.Repository, error)) *LocalBackend {
	return &LocalBackend{
		repos:  scoring.AnnotateAll(repos),
		reload: reload,
	}
}

func (b *LocalBackend) ListRepos(ctx context.Context, q models.Query, page, perPage int) (*models.RepoListResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	filtered := Apply(b.repos, q)
	b.mu.RUnlock()

	p := models.NewPaginationParams(page, perPage)
	items, total := Paginate(filtered, p.Page, p.PerPage)
	return &models.RepoListResponse{
		Repos:   items,
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}, nil
}

func (b *LocalBackend) TriggerRefresh(ctx context.Context) error {
	if b.reload == nil {
		return nil
	}
	repos, err := b.reload(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.repos = scoring.AnnotateAll(repos)
	b.mu.Unlock()
	return nil
}
