// Package store defines the chunk-store abstraction the engine retrieves
// passages from. The pgx subpackage backs it with PostgreSQL and pgvector;
// the memory subpackage is an in-process implementation for tests and
// dataset-free development.
package store

import (
	"context"

	"github.com/prolong-bio/prolong/pkg/common"
)

// Search limit bounds. Requests outside the range are clamped, not rejected.
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 50
)

// ClampLimit normalizes a requested result count into the allowed range.
// Non-positive values fall back to the default.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

// Filters restrict a search to chunks tagged with the given entities. A zero
// Filters matches everything. Filtering is strict: a chunk must mention the
// protein (when set) and at least one of the theories (when set).
type Filters struct {
	Protein  string
	Theories []string
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return f.Protein == "" && len(f.Theories) == 0
}

// Chunk is the indexing-side record for one passage of a paper.
type Chunk struct {
	ID        string
	PMCID     string
	PMID      string
	Title     string
	Year      int
	Text      string
	Proteins  []string
	Theories  []string
	Embedding []float32
}

// Stats summarizes the indexed corpus for dashboards.
type Stats struct {
	TotalChunks int64 `json:"total_chunks"`
	TotalPapers int64 `json:"total_papers"`
	YearMin     int   `json:"year_min"`
	YearMax     int   `json:"year_max"`
}

// ChunkStore is the retrieval interface the engine depends on. Search returns
// passages ordered by similarity descending, with Score set to the cosine
// similarity in [0,1]. The limit is clamped by the implementation.
type ChunkStore interface {
	Search(ctx context.Context, embedding []float32, limit int, filters Filters) ([]common.Passage, error)
	Insert(ctx context.Context, chunks []Chunk) error
	Count(ctx context.Context) (int64, error)
	CountForProtein(ctx context.Context, symbol string) (int64, error)
	CountForTheory(ctx context.Context, theoryID string) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}
