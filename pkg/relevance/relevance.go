// Package relevance scores how strongly a piece of text connects to aging
// biology. The score is a keyword and theory census over the vocabulary, not
// a model call, so it is deterministic and cheap enough to run on every
// response.
package relevance

import (
	"strings"

	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/entity"
	"github.com/prolong-bio/prolong/pkg/vocab"
)

// Band labels for the relevance score. The casing is display-exact; clients
// render the label verbatim.
const (
	BandHigh     = "High"
	BandModerate = "Moderate"
	BandLow      = "Low"
)

// Config holds the scoring weights and thresholds.
type Config struct {
	// TheoryWeight and KeywordWeight convert counts into the raw score:
	// score = TheoryWeight*theories + KeywordWeight*keywords, clamped to 1.0.
	TheoryWeight  float64
	KeywordWeight float64

	// HighThreshold and ModerateThreshold split the score into bands. A score
	// at or above HighThreshold is high, at or above ModerateThreshold is
	// moderate, anything below is low.
	HighThreshold     float64
	ModerateThreshold float64

	// MaxConnections caps the generated connection list.
	MaxConnections int
}

// DefaultConfig returns the production scoring parameters.
func DefaultConfig() Config {
	return Config{
		TheoryWeight:      0.15,
		KeywordWeight:     0.1,
		HighThreshold:     0.7,
		ModerateThreshold: 0.4,
		MaxConnections:    10,
	}
}

// Scorer analyzes text against the vocabulary. Safe for concurrent use.
type Scorer struct {
	cfg       Config
	vocab     *vocab.Vocabulary
	extractor *entity.Extractor
}

// NewScorer builds a Scorer over the given vocabulary.
func NewScorer(cfg Config, v *vocab.Vocabulary) *Scorer {
	return &Scorer{
		cfg:       cfg,
		vocab:     v,
		extractor: entity.NewExtractor(v),
	}
}

// IsAgingQuery reports whether the query text itself mentions any aging
// keyword, along with the keywords found. Used to decide whether a general
// query needs the aging framing in its prompt.
func (s *Scorer) IsAgingQuery(query string) (bool, []string) {
	found := s.keywordHits(query)
	return len(found) > 0, found
}

// Analyze scores the text and derives the human-readable connection list.
// Theory identification is whole-word over the theory vocabulary; theory ids
// tagged on retrieved passages join the union before scoring, so a tagged
// passage raises the score even when the text never names its theory.
// Keyword matching is substring so that e.g. "anti-aging" still counts
// "aging".
func (s *Scorer) Analyze(text string, taggedTheories ...string) common.AgingRelevance {
	keywords := s.keywordHits(text)
	theories := s.extractor.Theories(text)
	for _, id := range taggedTheories {
		if !s.vocab.Theories.Contains(id) {
			continue
		}
		theories = appendDistinct(theories, id)
	}

	score := s.cfg.TheoryWeight*float64(len(theories)) + s.cfg.KeywordWeight*float64(len(keywords))
	if score > 1.0 {
		score = 1.0
	}

	return common.AgingRelevance{
		HasConnection: score > 0 || len(theories) > 0,
		Score:         score,
		Connections:   s.connections(keywords, theories),
		Theories:      theories,
		Band:          s.band(score),
	}
}

func (s *Scorer) band(score float64) string {
	switch {
	case score >= s.cfg.HighThreshold:
		return BandHigh
	case score >= s.cfg.ModerateThreshold:
		return BandModerate
	default:
		return BandLow
	}
}

func appendDistinct(list []string, id string) []string {
	for _, have := range list {
		if have == id {
			return list
		}
	}
	return append(list, id)
}

func (s *Scorer) keywordHits(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range s.vocab.Keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// connectionTemplates maps a trigger keyword to a connection sentence. The
// trigger is matched against the found-keyword list, not the raw text, so a
// keyword only produces a sentence when it also contributed to the score.
var connectionTemplates = []struct {
	trigger  string
	sentence string
}{
	{"mitochondrial", "Involved in mitochondrial function and energy metabolism"},
	{"oxidative stress", "Related to oxidative stress response"},
	{"genomic instability", "Plays role in DNA damage response and genomic stability"},
	{"telomere", "Associated with telomere maintenance"},
	{"senescence", "Linked to cellular senescence pathways"},
	{"autophagy", "Regulates autophagy and cellular recycling"},
	{"inflammation", "Modulates inflammatory responses"},
	{"longevity", "Directly associated with longevity regulation"},
	{"lifespan", "Directly associated with longevity regulation"},
}

func (s *Scorer) connections(keywords, theories []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(sentence string) {
		if _, dup := seen[sentence]; dup {
			return
		}
		seen[sentence] = struct{}{}
		out = append(out, sentence)
	}

	kwSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kwSet[kw] = struct{}{}
	}
	for _, tpl := range connectionTemplates {
		if _, ok := kwSet[tpl.trigger]; ok {
			add(tpl.sentence)
		}
	}

	for _, id := range theories {
		if t, ok := s.vocab.Theories.GetByID(id); ok {
			add("Relates to the " + t.Label + " theory of aging")
		}
	}

	if s.cfg.MaxConnections > 0 && len(out) > s.cfg.MaxConnections {
		out = out[:s.cfg.MaxConnections]
	}
	return out
}
