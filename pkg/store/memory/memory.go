// Package memory implements store.ChunkStore in process memory. It backs
// tests and dataset-free development where no PostgreSQL instance exists;
// search semantics mirror the pgx implementation.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ChunkStorage holds chunks in memory. Safe for concurrent use.
type ChunkStorage struct {
	mu     sync.RWMutex
	chunks []store.Chunk
}

// NewChunkStorage creates an empty in-memory chunk store.
func NewChunkStorage() *ChunkStorage {
	return &ChunkStorage{}
}

// Search scores every chunk by cosine similarity against the embedding,
// applies the filters strictly, and returns the top chunks by similarity.
func (s *ChunkStorage) Search(
	ctx context.Context,
	embedding []float32,
	limit int,
	filters store.Filters,
) ([]common.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = store.ClampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	passages := make([]common.Passage, 0, limit)
	for _, c := range s.chunks {
		if !matches(c, filters) {
			continue
		}
		passages = append(passages, common.Passage{
			ID:       c.ID,
			PMCID:    c.PMCID,
			PMID:     c.PMID,
			Title:    c.Title,
			Year:     c.Year,
			Text:     c.Text,
			Score:    cosineSimilarity(embedding, c.Embedding),
			Proteins: c.Proteins,
			Theories: c.Theories,
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > limit {
		passages = passages[:limit]
	}
	return passages, nil
}

// Insert adds chunks to the store, assigning ids to chunks without one.
func (s *ChunkStorage) Insert(ctx context.Context, chunks []store.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if c.ID == "" {
			id, err := gonanoid.New()
			if err != nil {
				return err
			}
			c.ID = id
		}
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *ChunkStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks)), nil
}

// CountForProtein returns the number of chunks tagged with the given protein.
func (s *ChunkStorage) CountForProtein(ctx context.Context, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, c := range s.chunks {
		if containsFold(c.Proteins, symbol) {
			count++
		}
	}
	return count, nil
}

// CountForTheory returns the number of chunks tagged with the given theory.
func (s *ChunkStorage) CountForTheory(ctx context.Context, theoryID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, c := range s.chunks {
		for _, id := range c.Theories {
			if id == theoryID {
				count++
				break
			}
		}
	}
	return count, nil
}

// Stats summarizes the stored corpus.
func (s *ChunkStorage) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.Stats{TotalChunks: int64(len(s.chunks))}
	papers := make(map[string]struct{})
	for _, c := range s.chunks {
		papers[c.PMCID] = struct{}{}
		if c.Year == 0 {
			continue
		}
		if stats.YearMin == 0 || c.Year < stats.YearMin {
			stats.YearMin = c.Year
		}
		if c.Year > stats.YearMax {
			stats.YearMax = c.Year
		}
	}
	stats.TotalPapers = int64(len(papers))
	return stats, nil
}

func matches(c store.Chunk, filters store.Filters) bool {
	if filters.Protein != "" && !containsFold(c.Proteins, filters.Protein) {
		return false
	}
	if len(filters.Theories) > 0 {
		found := false
		for _, want := range filters.Theories {
			for _, have := range c.Theories {
				if want == have {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
