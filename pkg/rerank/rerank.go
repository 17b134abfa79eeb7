// Package rerank reorders retrieved passages by a combined score on top of
// raw vector similarity.
package rerank

import (
	"sort"
	"strings"
	"time"

	"github.com/prolong-bio/prolong/pkg/common"
)

// Config holds the reranking weights and thresholds. The values are
// deliberately explicit named fields so they can be reviewed and tested in
// isolation from the orchestration logic.
type Config struct {
	SimilarityWeight  float64
	RecencyWeight     float64
	FilterMatchWeight float64

	// RecencyWindowYears is the age, in calendar years, up to which a paper
	// still counts as recent. The boost is a step function: a paper published
	// exactly RecencyWindowYears ago is recent, one year older is not.
	RecencyWindowYears int
}

// DefaultConfig returns the production weights.
func DefaultConfig() Config {
	return Config{
		SimilarityWeight:   0.7,
		RecencyWeight:      0.2,
		FilterMatchWeight:  0.1,
		RecencyWindowYears: 5,
	}
}

// Reranker scores and reorders passages. Now is overridable in tests to pin
// the recency cutoff.
type Reranker struct {
	cfg Config
	Now func() time.Time
}

// NewReranker creates a Reranker with the given config.
func NewReranker(cfg Config) *Reranker {
	return &Reranker{
		cfg: cfg,
		Now: time.Now,
	}
}

// Rerank computes the combined score for each passage, sorts descending with
// a stable tie-break on raw similarity (and insertion order after that), and
// truncates to the query's requested count.
func (r *Reranker) Rerank(passages []common.Passage, q common.Query) []common.RankedPassage {
	if q.TopK <= 0 || len(passages) == 0 {
		return []common.RankedPassage{}
	}

	currentYear := r.Now().Year()

	ranked := make([]common.RankedPassage, len(passages))
	for i, p := range passages {
		score := p.Score * r.cfg.SimilarityWeight
		if r.isRecent(p.Year, currentYear) {
			score += r.cfg.RecencyWeight
		}
		if matchesFilters(p, q) {
			score += r.cfg.FilterMatchWeight
		}
		ranked[i] = common.RankedPassage{Passage: p, RankScore: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RankScore != ranked[j].RankScore {
			return ranked[i].RankScore > ranked[j].RankScore
		}
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > q.TopK {
		ranked = ranked[:q.TopK]
	}
	return ranked
}

// IsRecent reports whether a paper published in year counts as recent under
// the configured window, relative to the reranker's clock. Exposed so the UI
// "recent" badge uses the exact same cutoff.
func (r *Reranker) IsRecent(year int) bool {
	return r.isRecent(year, r.Now().Year())
}

func (r *Reranker) isRecent(year, currentYear int) bool {
	if year <= 0 {
		return false
	}
	return year >= currentYear-r.cfg.RecencyWindowYears
}

// matchesFilters reports whether the passage satisfies every active filter.
// Filters are already applied at retrieval time, so for strict retrieval this
// is always true; it only drops below 1.0 if retrieval relaxed a filter.
func matchesFilters(p common.Passage, q common.Query) bool {
	if q.Protein != "" {
		found := false
		for _, symbol := range p.Proteins {
			if strings.EqualFold(symbol, q.Protein) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(q.Theories) > 0 {
		found := false
		for _, want := range q.Theories {
			for _, have := range p.Theories {
				if want == have {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
