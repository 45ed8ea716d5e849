package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"codefossils/apiclient"
	"codefossils/models"
	"codefossils/pipeline"
)

type browseOptions struct {
	category string
	sort     string
	search   string
	perPage  int
	pages    int
	refresh  bool
	poll     time.Duration
	apiURL   string
	file     string
}

func newBrowseCmd(a *app) *cobra.Command {
	opts := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List repositories with filters, sorting and paging",
		Long: `List repositories from the API, or from a JSON export with --file.

Scores and categories missing from the source are computed locally.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := opts.backend(a)
			if err != nil {
				return err
			}
			perPage := opts.perPage
			if perPage <= 0 {
				perPage = a.cfg.PerPage
			}

			state, err := browse(cmd.Context(), backend, opts.query(), perPage, opts.pages, opts.refresh,
				pipeline.WithPollInterval(opts.poll))
			if err != nil {
				return err
			}
			renderBrowse(cmd.OutOrStdout(), state, time.Now())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.category, "category", "all", "category filter: all, web, mobile, ai, dev-tools, data, game, other")
	f.StringVar(&opts.sort, "sort", "score", "sort order: score, stars, oldest, latest")
	f.StringVar(&opts.search, "search", "", "match name, description or topics")
	f.IntVar(&opts.perPage, "per-page", 0, "results per page (defaults to PER_PAGE)")
	f.IntVar(&opts.pages, "pages", 1, "number of pages to load")
	f.BoolVar(&opts.refresh, "refresh", false, "trigger a refresh and wait for new results first")
	f.DurationVar(&opts.poll, "poll-interval", pipeline.DefaultPollInterval, "delay between polls while waiting on a refresh")
	f.StringVar(&opts.apiURL, "api", "", "API base URL (defaults to API_BASE_URL)")
	f.StringVar(&opts.file, "file", "", "browse a JSON array of repositories instead of the API")
	return cmd
}

func (o *browseOptions) query() models.Query {
	category, ok := models.ParseCategory(o.category)
	if !ok {
		category = models.CategoryAll
	}
	return models.Query{
		Category: category,
		Sort:     models.ParseSort(o.sort),
		Search:   o.search,
	}
}

func (o *browseOptions) backend(a *app) (pipeline.Backend, error) {
	if o.file != "" {
		repos, err := readRepoFile(o.file)
		if err != nil {
			return nil, err
		}
		path := o.file
		return pipeline.NewLocalBackend(repos, func(ctx context.Context) ([]models.Repository, error) {
			return readRepoFile(path)
		}), nil
	}

	apiURL := o.apiURL
	if apiURL == "" {
		apiURL = a.cfg.APIBaseURL
	}
	return apiclient.NewClient(apiURL)
}

func readRepoFile(path string) ([]models.Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var repos []models.Repository
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return repos, nil
}

// browse drives a Browser through one session: load the query, optionally
// refresh, then page forward.
func browse(ctx context.Context, backend pipeline.Backend, q models.Query, perPage, pages int, refresh bool, opts ...pipeline.Option) (pipeline.State, error) {
	b := pipeline.NewBrowser(backend, append([]pipeline.Option{pipeline.WithPerPage(perPage)}, opts...)...)

	var err error
	if q.Normalize() == b.Query() {
		err = b.Load(ctx)
	} else {
		err = b.SetQuery(ctx, q)
	}
	if err != nil {
		return b.View(), err
	}

	if refresh {
		if err := b.Refresh(ctx); err != nil {
			return b.View(), err
		}
	}

	for i := 1; i < pages && b.HasMore(); i++ {
		if _, err := b.LoadMore(ctx); err != nil {
			return b.View(), err
		}
	}
	return b.View(), nil
}
