package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	mid "github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/internal/stats"
	"github.com/prolong-bio/prolong/pkg/ai"
	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/engine"
	"github.com/prolong-bio/prolong/pkg/store"
	"github.com/prolong-bio/prolong/pkg/store/memory"
	"github.com/prolong-bio/prolong/pkg/vocab"
)

type stubClient struct {
	ai.MetricsAccumulator
}

func (c *stubClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "SIRT6 supports genome stability [1].", nil
}

func (c *stubClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return ai.UnmarshalFlexible(`{"predicted_function": "deacetylase", "aging_role": "genome maintenance", "confidence": "high", "key_mechanisms": ["DNA repair"]}`, out)
}

func (c *stubClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func testApp(t *testing.T) (*echo.Echo, *mid.App) {
	t.Helper()

	proteins := vocab.NewProteinRegistry([]vocab.Protein{
		{GenAgeID: "1", Symbol: "SIRT6", Name: "sirtuin 6", Why: "mammal"},
	})
	theories := vocab.NewTheoryRegistry([]vocab.Theory{
		{ID: "genomic_instability", Label: "Genomic Instability", Terms: []string{"DNA damage"}},
	})
	v := vocab.New(proteins, theories, nil)

	chunkStore := memory.NewChunkStorage()
	err := chunkStore.Insert(context.Background(), []store.Chunk{
		{
			ID: "c1", PMCID: "PMC1", PMID: "11", Title: "SIRT6 study", Year: 2024,
			Text:     "SIRT6 promotes DNA repair",
			Proteins: []string{"SIRT6"}, Theories: []string{"genomic_instability"},
			Embedding: []float32{1, 0, 0},
		},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	client := &stubClient{}
	app := &mid.App{
		Store:    chunkStore,
		AiClient: client,
		Engine: engine.NewEngine(engine.NewEngineParams{
			Config:   engine.DefaultConfig(),
			Store:    chunkStore,
			AiClient: client,
			Vocab:    v,
		}),
		Stats: stats.NewService(chunkStore, v),
		Vocab: v,
	}

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	e.Use(mid.AppContextMiddleware(app))
	return e, app
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestQueryRAGHandler(t *testing.T) {
	e, _ := testApp(t)
	e.POST("/api/query/rag", QueryRAGHandler)

	rec := doJSON(t, e, http.MethodPost, "/api/query/rag",
		`{"query": "how does SIRT6 affect DNA repair", "protein": "sirt6", "top_k": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp common.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(resp.Passages))
	}
	if resp.Answer == "" {
		t.Fatal("expected synthesized answer by default")
	}
	if resp.Query.Protein != "SIRT6" {
		t.Fatalf("expected canonical protein filter, got %q", resp.Query.Protein)
	}
}

func TestQueryRAGHandler_MissingQuery(t *testing.T) {
	e, _ := testApp(t)
	e.POST("/api/query/rag", QueryRAGHandler)

	rec := doJSON(t, e, http.MethodPost, "/api/query/rag", `{"top_k": 3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryRAGGeneralHandler_IgnoresFilters(t *testing.T) {
	e, _ := testApp(t)
	e.POST("/api/query/rag-general", QueryRAGGeneralHandler)

	rec := doJSON(t, e, http.MethodPost, "/api/query/rag-general",
		`{"query": "aging mechanisms", "protein": "SIRT6"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp common.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.IsGeneralQuery {
		t.Fatal("expected general query")
	}
	if resp.Query.Protein != "" {
		t.Fatal("expected protein filter to be dropped")
	}
	if resp.AgingRelevance == nil {
		t.Fatal("expected aging relevance on general query")
	}
}

func TestTruncateText_KeepsRuneBoundary(t *testing.T) {
	// A two-byte rune straddles the byte limit; the cut must back up to the
	// rune start instead of splitting it.
	long := strings.Repeat("a", transportChunkChars-1) + "αβγ"
	got := truncateText(long, transportChunkChars)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if len(got) > transportChunkChars+3 {
		t.Fatalf("truncated text too long: %d bytes", len(got))
	}

	short := "βγδ"
	if truncateText(short, transportChunkChars) != short {
		t.Fatal("short text must pass through unchanged")
	}
}

func TestGetTheoryHandlers(t *testing.T) {
	e, _ := testApp(t)
	e.GET("/api/theories", ListTheoriesHandler)
	e.GET("/api/theories/:id", GetTheoryHandler)

	rec := doJSON(t, e, http.MethodGet, "/api/theories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/theories/genomic_instability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/theories/unknown_theory", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetProteinHandlers(t *testing.T) {
	e, _ := testApp(t)
	e.GET("/api/proteins/genage", ListGenAgeProteinsHandler)
	e.GET("/api/proteins/:symbol", GetProteinHandler)

	rec := doJSON(t, e, http.MethodGet, "/api/proteins/genage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/proteins/sirt6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var proteinStats stats.ProteinStats
	if err := json.Unmarshal(rec.Body.Bytes(), &proteinStats); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if proteinStats.Symbol != "SIRT6" || proteinStats.Chunks != 1 {
		t.Fatalf("unexpected protein stats: %+v", proteinStats)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/proteins/NOTAGENE", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPredictFunctionHandler(t *testing.T) {
	e, _ := testApp(t)
	e.POST("/api/proteins/:symbol/predict-function", PredictFunctionHandler)

	rec := doJSON(t, e, http.MethodPost, "/api/proteins/SIRT6/predict-function", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var prediction engine.FunctionPrediction
	if err := json.Unmarshal(rec.Body.Bytes(), &prediction); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if prediction.Symbol != "SIRT6" || prediction.Confidence != "high" {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}

	rec = doJSON(t, e, http.MethodPost, "/api/proteins/NOTAGENE/predict-function", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatsHandlers(t *testing.T) {
	e, _ := testApp(t)
	e.GET("/api/stats/vector-store", DatabaseStatsHandler)
	e.GET("/api/stats/theories", TheoryStatsHandler)

	rec := doJSON(t, e, http.MethodGet, "/api/stats/vector-store", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var dbStats stats.DatabaseStats
	if err := json.Unmarshal(rec.Body.Bytes(), &dbStats); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if dbStats.TotalChunks != 1 || dbStats.Proteins != 1 {
		t.Fatalf("unexpected stats: %+v", dbStats)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/stats/theories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var counts []stats.TheoryCount
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(counts) != 1 || counts[0].Chunks != 1 {
		t.Fatalf("unexpected theory counts: %v", counts)
	}
}
