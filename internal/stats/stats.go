// Package stats aggregates corpus and vocabulary figures for the dashboard
// endpoints.
package stats

import (
	"context"

	"github.com/prolong-bio/prolong/pkg/store"
	"github.com/prolong-bio/prolong/pkg/vocab"
)

// DatabaseStats is the dashboard summary of the indexed corpus and the
// loaded vocabulary.
type DatabaseStats struct {
	store.Stats
	Proteins int `json:"proteins"`
	Theories int `json:"theories"`
}

// ProteinStats summarizes corpus coverage for one protein.
type ProteinStats struct {
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Chunks     int64    `json:"chunks"`
	Categories []string `json:"genage_categories,omitempty"`
}

// Service reads aggregate figures from the chunk store and vocabulary.
type Service struct {
	store store.ChunkStore
	vocab *vocab.Vocabulary
}

// NewService creates a stats Service.
func NewService(chunkStore store.ChunkStore, v *vocab.Vocabulary) *Service {
	return &Service{store: chunkStore, vocab: v}
}

// Database returns the corpus summary plus vocabulary sizes.
func (s *Service) Database(ctx context.Context) (DatabaseStats, error) {
	corpus, err := s.store.Stats(ctx)
	if err != nil {
		return DatabaseStats{}, err
	}
	return DatabaseStats{
		Stats:    corpus,
		Proteins: s.vocab.Proteins.Count(),
		Theories: s.vocab.Theories.Count(),
	}, nil
}

// Protein returns corpus coverage for a known protein. The boolean reports
// whether the symbol exists in the vocabulary.
func (s *Service) Protein(ctx context.Context, symbol string) (ProteinStats, bool, error) {
	p, ok := s.vocab.Proteins.GetBySymbol(symbol)
	if !ok {
		return ProteinStats{}, false, nil
	}
	chunks, err := s.store.CountForProtein(ctx, p.Symbol)
	if err != nil {
		return ProteinStats{}, true, err
	}
	return ProteinStats{
		Symbol:     p.Symbol,
		Name:       p.Name,
		Chunks:     chunks,
		Categories: p.WhyCategories(),
	}, true, nil
}

// CategoryDistribution returns how many GenAge proteins fall into each
// evidence category.
func (s *Service) CategoryDistribution() map[string]int {
	return s.vocab.Proteins.CategoryDistribution()
}

// TheoryCount pairs an aging theory with its chunk coverage in the corpus.
type TheoryCount struct {
	ID     string `json:"theory_id"`
	Label  string `json:"label"`
	Chunks int64  `json:"chunks"`
}

// TheoryDistribution returns chunk coverage for every known aging theory,
// ordered by theory id.
func (s *Service) TheoryDistribution(ctx context.Context) ([]TheoryCount, error) {
	theories := s.vocab.Theories.All()
	counts := make([]TheoryCount, 0, len(theories))
	for _, t := range theories {
		n, err := s.store.CountForTheory(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		counts = append(counts, TheoryCount{ID: t.ID, Label: t.Label, Chunks: n})
	}
	return counts, nil
}
