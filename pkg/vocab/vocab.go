// Package vocab holds the read-only vocabulary tables the engine matches
// against: GenAge protein symbols, aging-theory labels, and the aging keyword
// list. Everything here is loaded once at process start and never mutated,
// so lookups need no locking on the hot path.
package vocab

import (
	"sync"
)

// DefaultAgingKeywords is the aging-domain term list used for relevance
// scoring. Membership is product content, kept here as reviewable
// configuration; tests and deployments may substitute their own list.
var DefaultAgingKeywords = []string{
	"aging", "ageing", "longevity", "lifespan", "senescence", "age-related",
	"elderly", "geriatric", "telomere", "oxidative stress", "mitochondrial",
	"autophagy", "inflammation", "proteostasis", "genomic instability",
	"cellular senescence", "stem cell", "epigenetic", "caloric restriction",
	"rapamycin", "metformin", "resveratrol", "sirtuin", "mtor", "ampk",
	"healthspan", "age-associated", "gerontology", "rejuvenation",
	"apoptosis",
}

// Vocabulary bundles the registries the engine needs for entity extraction
// and relevance scoring.
type Vocabulary struct {
	Proteins *ProteinRegistry
	Theories *TheoryRegistry
	Keywords []string
}

// New builds a Vocabulary from pre-constructed registries. Tests use this to
// inject small vocabularies.
func New(proteins *ProteinRegistry, theories *TheoryRegistry, keywords []string) *Vocabulary {
	if keywords == nil {
		keywords = DefaultAgingKeywords
	}
	return &Vocabulary{
		Proteins: proteins,
		Theories: theories,
		Keywords: keywords,
	}
}

// LoadParams configures Load with the JSON data files.
type LoadParams struct {
	GenAgePath   string
	TheoriesPath string
}

// Load reads the protein and theory data files and assembles a Vocabulary
// with the default keyword list.
func Load(params LoadParams) (*Vocabulary, error) {
	proteins, err := LoadProteins(params.GenAgePath)
	if err != nil {
		return nil, err
	}
	theories, err := LoadTheories(params.TheoriesPath)
	if err != nil {
		return nil, err
	}
	return New(NewProteinRegistry(proteins), NewTheoryRegistry(theories), nil), nil
}

var (
	globalOnce sync.Once
	global     *Vocabulary
	globalErr  error
)

// Global loads the process-wide Vocabulary exactly once and returns the same
// instance on every subsequent call, regardless of the params passed later.
// The once guard protects against concurrent duplicate initialization.
func Global(params LoadParams) (*Vocabulary, error) {
	globalOnce.Do(func() {
		global, globalErr = Load(params)
	})
	return global, globalErr
}
