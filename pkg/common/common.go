package common

// Query describes a single retrieval request against the paper corpus.
// A query is immutable once constructed: the engine never mutates it and
// copies it into the response verbatim.
//
// Protein and Theories are optional filters. When both are empty the query
// is "general" and the engine always runs aging-relevance scoring on the
// result.
type Query struct {
	Text       string   `json:"query"`
	Protein    string   `json:"protein,omitempty"`
	Theories   []string `json:"theories,omitempty"`
	TopK       int      `json:"top_k"`
	Synthesize bool     `json:"synthesize"`
}

// IsGeneral reports whether the query carries no filters.
func (q Query) IsGeneral() bool {
	return q.Protein == "" && len(q.Theories) == 0
}

// Passage is a contiguous span of text from an indexed paper, the atomic
// unit of retrieval. Passages are produced by the chunk store and are
// read-only downstream.
//
// Score is the raw similarity score in [0,1] reported by the vector search.
// Proteins and Theories hold the vocabulary entities tagged on the passage
// at indexing time.
type Passage struct {
	ID       string   `json:"id"`
	PMCID    string   `json:"pmcid"`
	PMID     string   `json:"pmid,omitempty"`
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
	Proteins []string `json:"proteins"`
	Theories []string `json:"theories"`
}

// RankedPassage is a Passage plus the combined rank score assigned by the
// reranker (similarity, recency boost, filter-match boost).
type RankedPassage struct {
	Passage
	RankScore float64 `json:"rank_score"`
}

// Citation is a stable reference to a paper that backed the synthesized
// answer. ID holds the preferred identifier (PMID when present, otherwise
// PMCID). Citations are deduplicated by ID, ordered by first appearance.
type Citation struct {
	ID    string `json:"id"`
	PMID  string `json:"pmid,omitempty"`
	PMCID string `json:"pmcid,omitempty"`
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// AgingRelevance is the derived verdict on how strongly a query/answer
// connects to aging biology. It is computed per response and never persisted.
type AgingRelevance struct {
	HasConnection bool     `json:"has_aging_connection"`
	Score         float64  `json:"relevance_score"`
	Connections   []string `json:"connections"`
	Theories      []string `json:"aging_theories"`
	Band          string   `json:"band"`
}

// AppliedFilters records which filters were active for a query.
type AppliedFilters struct {
	Protein  string   `json:"protein,omitempty"`
	Theories []string `json:"theories,omitempty"`
}

// ResponseMetadata carries the read-only accessors consumed by dashboards
// and the UI stats layer.
type ResponseMetadata struct {
	Confidence         float64        `json:"confidence"`
	ProteinsMentioned  []string       `json:"proteins_mentioned"`
	TheoriesIdentified []string       `json:"theories_identified"`
	QueryTimeMs        int64          `json:"query_time_ms"`
	FiltersApplied     AppliedFilters `json:"filters_applied"`
	ChunksRetrieved    int            `json:"chunks_retrieved"`
	TraceID            string         `json:"trace_id,omitempty"`

	// Degraded is set when synthesis failed after retries but retrieval
	// succeeded; the response still carries passages and citations.
	Degraded bool `json:"degraded,omitempty"`

	// NoResults marks an empty result caused by filters that matched
	// nothing. Callers render "no results, try broadening filters" instead
	// of treating it as a failure.
	NoResults bool `json:"no_results,omitempty"`
}

// QueryResponse is the assembled result of one engine run.
type QueryResponse struct {
	Query          Query            `json:"query"`
	Answer         string           `json:"answer"`
	Passages       []RankedPassage  `json:"chunks"`
	Citations      []Citation       `json:"citations"`
	Metadata       ResponseMetadata `json:"metadata"`
	AgingRelevance *AgingRelevance  `json:"aging_relevance,omitempty"`
	IsGeneralQuery bool             `json:"is_general_query"`
}
