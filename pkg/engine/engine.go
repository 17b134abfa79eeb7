// Package engine orchestrates the query pipeline: embed the query, search
// the chunk store, rerank, extract entities, synthesize an answer, and
// assemble the response with citations and aging-relevance scoring.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/prolong-bio/prolong/internal/util"
	"github.com/prolong-bio/prolong/pkg/ai"
	"github.com/prolong-bio/prolong/pkg/citation"
	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/entity"
	"github.com/prolong-bio/prolong/pkg/logger"
	"github.com/prolong-bio/prolong/pkg/relevance"
	"github.com/prolong-bio/prolong/pkg/rerank"
	"github.com/prolong-bio/prolong/pkg/store"
	"github.com/prolong-bio/prolong/pkg/vocab"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// Config bounds each pipeline stage. Stage timeouts apply per stage, not to
// the whole query, so one slow stage cannot consume the entire budget of the
// stages after it.
type Config struct {
	EmbedTimeout     time.Duration
	SearchTimeout    time.Duration
	SynthesisTimeout time.Duration

	MaxRetries     int
	RetryBaseDelay time.Duration

	// ContextChunks caps how many top-ranked passages feed the synthesis
	// prompt; ContextTokenBudget caps their total token footprint.
	ContextChunks      int
	ContextTokenBudget int
	SynthesisMaxTokens int

	// ConfidenceChunks is how many top-ranked passage scores average into the
	// response confidence.
	ConfidenceChunks int
}

// DefaultConfig returns the production pipeline parameters.
func DefaultConfig() Config {
	return Config{
		EmbedTimeout:     15 * time.Second,
		SearchTimeout:    10 * time.Second,
		SynthesisTimeout: 60 * time.Second,

		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,

		ContextChunks:      5,
		ContextTokenBudget: 3000,
		SynthesisMaxTokens: 400,

		ConfidenceChunks: 3,
	}
}

// Engine runs queries against the chunk store. Safe for concurrent use.
type Engine struct {
	cfg       Config
	store     store.ChunkStore
	aiClient  ai.Client
	vocab     *vocab.Vocabulary
	extractor *entity.Extractor
	reranker  *rerank.Reranker
	scorer    *relevance.Scorer
}

// NewEngineParams defines the dependencies for creating an Engine.
type NewEngineParams struct {
	Config   Config
	Store    store.ChunkStore
	AiClient ai.Client
	Vocab    *vocab.Vocabulary
}

// NewEngine creates an Engine with the given dependencies.
func NewEngine(params NewEngineParams) *Engine {
	return &Engine{
		cfg:       params.Config,
		store:     params.Store,
		aiClient:  params.AiClient,
		vocab:     params.Vocab,
		extractor: entity.NewExtractor(params.Vocab),
		reranker:  rerank.NewReranker(rerank.DefaultConfig()),
		scorer:    relevance.NewScorer(relevance.DefaultConfig(), params.Vocab),
	}
}

// Query runs the full pipeline for one query. Running the same query twice
// against an unchanged store yields the same passages, citations, and scores;
// only the synthesized answer text may vary.
//
// Retrieval failures return a *RetrievalError. Synthesis failures do not fail
// the query: the response degrades to passages and citations with
// Metadata.Degraded set.
func (e *Engine) Query(ctx context.Context, q common.Query) (common.QueryResponse, error) {
	start := time.Now()

	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return common.QueryResponse{}, ErrEmptyQuery
	}
	q = e.normalizeFilters(q)

	traceID, err := gonanoid.New()
	if err != nil {
		return common.QueryResponse{}, err
	}

	resp := common.QueryResponse{
		Query:          q,
		IsGeneralQuery: q.IsGeneral(),
		Metadata: common.ResponseMetadata{
			TraceID: traceID,
			FiltersApplied: common.AppliedFilters{
				Protein:  q.Protein,
				Theories: q.Theories,
			},
		},
	}

	// top_k of zero is a valid request for an empty result set.
	if q.TopK == 0 {
		resp.Answer = ""
		resp.Passages = []common.RankedPassage{}
		resp.Citations = []common.Citation{}
		resp.Metadata.QueryTimeMs = time.Since(start).Milliseconds()
		return resp, nil
	}
	if q.TopK < 0 || q.TopK > store.MaxSearchLimit {
		q.TopK = store.ClampLimit(q.TopK)
		resp.Query.TopK = q.TopK
	}

	passages, err := e.retrieve(ctx, q)
	if err != nil {
		return common.QueryResponse{}, err
	}
	resp.Metadata.ChunksRetrieved = len(passages)

	if len(passages) == 0 {
		// Filters that match nothing are a valid empty result, not a failure.
		resp.Metadata.NoResults = !q.IsGeneral()
		resp.Passages = []common.RankedPassage{}
		resp.Citations = []common.Citation{}
		resp.Metadata.QueryTimeMs = time.Since(start).Milliseconds()
		logger.Info("query matched no chunks", "trace_id", traceID, "protein", q.Protein, "theories", q.Theories)
		return resp, nil
	}

	ranked := e.reranker.Rerank(passages, q)
	resp.Passages = ranked

	// Citations cover exactly the passages the model saw: when synthesizing,
	// the context selection; without synthesis no narrower set exists and
	// every ranked passage is citable.
	var (
		answer       string
		synthErr     error
		contextBlock string
	)
	cited := ranked
	if q.Synthesize {
		included, block, err := e.selectContext(ranked)
		if err != nil {
			synthErr = &SynthesisError{Err: err}
		} else {
			cited = included
			contextBlock = block
		}
	}
	citations := citation.Build(cited)
	resp.Citations = citations
	resp.Metadata.Confidence = e.confidence(ranked)

	// Entity extraction and answer synthesis are independent; run them in
	// parallel. Extraction cannot fail, synthesis degrades on failure.
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		proteins, theories := e.extractEntities(q, ranked)
		resp.Metadata.ProteinsMentioned = proteins
		resp.Metadata.TheoriesIdentified = theories
		return nil
	})
	if q.Synthesize && synthErr == nil {
		eg.Go(func() error {
			answer, synthErr = e.synthesize(ectx, q, contextBlock, citations)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return common.QueryResponse{}, err
	}

	if synthErr != nil {
		logger.Error("synthesis failed, returning degraded response", "trace_id", traceID, "error", synthErr)
		resp.Metadata.Degraded = true
	}
	resp.Answer = answer

	relevanceInput := q.Text
	if answer != "" {
		relevanceInput += "\n" + answer
	} else {
		for _, p := range ranked {
			relevanceInput += "\n" + p.Text
		}
	}
	// Theories tagged on the retrieved passages join the union before
	// scoring, so a tagged passage counts even when the answer never names
	// its theory.
	var tagged []string
	for _, p := range ranked {
		tagged = append(tagged, p.Theories...)
	}
	rel := e.scorer.Analyze(relevanceInput, tagged...)
	resp.AgingRelevance = &rel

	resp.Metadata.QueryTimeMs = time.Since(start).Milliseconds()
	logger.Debug("query completed",
		"trace_id", traceID,
		"chunks", len(ranked),
		"degraded", resp.Metadata.Degraded,
		"duration_ms", resp.Metadata.QueryTimeMs,
	)
	return resp, nil
}

// normalizeFilters canonicalizes the protein symbol and drops theory ids the
// vocabulary does not know. Unknown filters then behave like filters that
// match nothing rather than producing confusing partial matches.
func (e *Engine) normalizeFilters(q common.Query) common.Query {
	if q.Protein != "" {
		symbol := strings.ToUpper(strings.TrimSpace(q.Protein))
		if p, ok := e.vocab.Proteins.GetBySymbol(symbol); ok {
			symbol = p.Symbol
		}
		q.Protein = symbol
	}
	if len(q.Theories) > 0 {
		kept := make([]string, 0, len(q.Theories))
		for _, id := range q.Theories {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if !e.vocab.Theories.Contains(id) {
				logger.Warn("unknown theory filter", "theory", id)
			}
			kept = append(kept, id)
		}
		q.Theories = kept
	}
	return q
}

// retrieve embeds the query and searches the store, each with its own
// timeout and retry budget. Candidate count exceeds the requested top_k so
// the reranker has room to reorder.
func (e *Engine) retrieve(ctx context.Context, q common.Query) ([]common.Passage, error) {
	embedCtx, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout)
	defer cancel()

	embedding, err := util.RetryWithBackoff(embedCtx, e.cfg.MaxRetries, e.cfg.RetryBaseDelay,
		func(ctx context.Context) ([]float32, error) {
			return e.aiClient.GenerateEmbedding(ctx, []byte(q.Text))
		})
	if err != nil {
		return nil, &RetrievalError{Stage: "embedding", Err: err}
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.cfg.SearchTimeout)
	defer cancel()

	candidates := q.TopK * 2
	filters := store.Filters{Protein: q.Protein, Theories: q.Theories}
	passages, err := util.RetryWithContext(searchCtx, e.cfg.MaxRetries,
		func(ctx context.Context) ([]common.Passage, error) {
			return e.store.Search(ctx, embedding, candidates, filters)
		})
	if err != nil {
		return nil, &RetrievalError{Stage: "search", Err: err}
	}
	return passages, nil
}

// extractEntities collects the distinct proteins and theories mentioned in
// the query and the ranked passages, query first so its mentions lead.
func (e *Engine) extractEntities(q common.Query, ranked []common.RankedPassage) ([]string, []string) {
	var b strings.Builder
	b.WriteString(q.Text)
	for _, p := range ranked {
		b.WriteString("\n")
		b.WriteString(p.Text)
	}
	text := b.String()

	proteins, theories := e.extractor.Extract(text)
	for _, p := range ranked {
		proteins = mergeDistinct(proteins, p.Proteins)
		theories = mergeDistinct(theories, p.Theories)
	}
	return proteins, theories
}

// confidence is the mean raw similarity of the top ranked passages, clamped
// to [0,1].
func (e *Engine) confidence(ranked []common.RankedPassage) float64 {
	if len(ranked) == 0 {
		return 0
	}
	n := e.cfg.ConfidenceChunks
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += ranked[i].Score
	}
	confidence := sum / float64(n)
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func mergeDistinct(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}
