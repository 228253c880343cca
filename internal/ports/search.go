package ports

import (
	"context"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

// DoctrineSearcher maps a free-text query to the top-k scored doctrine
// passages. Deterministic for a fixed index state and query; must stay safe
// to call while the index is being rebuilt.
type DoctrineSearcher interface {
	Search(ctx context.Context, query string, k int) ([]domain.Passage, error)
}

// DoctrineIndex adds rebuild on top of search. Reindex atomically swaps the
// active snapshot; in-flight queries see either the old or the new index.
type DoctrineIndex interface {
	DoctrineSearcher
	Reindex(ctx context.Context) (chunks int, err error)
}
