package seed

import (
	"context"
	"fmt"

	"github.com/ibeckermayer/reelscribe/internal/search"
	"github.com/ibeckermayer/reelscribe/internal/types"
)

// Searcher is the external search-provider client the search source consults.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]string, error)
}

// searchSource resolves a filter spec into candidates via the search
// provider. The provider call is deferred until the first pull, and results
// are emitted lazily with non-reel links filtered and duplicates dropped
// before emission.
type searchSource struct {
	client  Searcher
	spec    types.SearchFilterSpec
	fetched bool
	pending []string
	seen    map[string]bool
}

// Search creates a source over search-provider results for the given spec.
func Search(client Searcher, spec types.SearchFilterSpec) Source {
	return &searchSource{
		client: client,
		spec:   spec,
		seen:   make(map[string]bool),
	}
}

func (ss *searchSource) Next(ctx context.Context) (types.ReelCandidate, error) {
	if !ss.fetched {
		q := search.BuildQuery(ss.spec)
		// Scope results to the reels surface. The site restriction is a
		// seeding concern, so it lives here rather than in the composer.
		q.Terms += " site:instagram.com/reel"

		links, err := ss.client.Search(ctx, q)
		if err != nil {
			return types.ReelCandidate{}, fmt.Errorf("search seed: %w", err)
		}
		ss.pending = links
		ss.fetched = true
	}

	for len(ss.pending) > 0 {
		link := ss.pending[0]
		ss.pending = ss.pending[1:]

		id := ExtractReelID(link)
		if id == "" || ss.seen[id] {
			continue
		}
		ss.seen[id] = true

		return types.ReelCandidate{
			RawURL: link,
			ReelID: id,
			Origin: types.OriginSearch,
		}, nil
	}

	return types.ReelCandidate{}, ErrExhausted
}

func (ss *searchSource) Close() error {
	return nil
}
