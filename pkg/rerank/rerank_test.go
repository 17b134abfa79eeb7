package rerank

import (
	"testing"
	"time"

	"github.com/prolong-bio/prolong/pkg/common"
)

func testReranker(t *testing.T) *Reranker {
	t.Helper()
	r := NewReranker(DefaultConfig())
	r.Now = func() time.Time {
		return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	return r
}

func TestRerank_CombinedScore(t *testing.T) {
	r := testReranker(t)

	passages := []common.Passage{
		{ID: "old", Score: 1.0, Year: 2010},
		{ID: "recent", Score: 1.0, Year: 2025},
	}
	got := r.Rerank(passages, common.Query{Text: "q", TopK: 5})
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}

	// No filters active, so both earn the filter-match boost.
	if got[0].ID != "recent" {
		t.Fatalf("expected recent passage first, got %q", got[0].ID)
	}
	expectScore(t, got[0].RankScore, 1.0*0.7+0.2+0.1)
	expectScore(t, got[1].RankScore, 1.0*0.7+0.1)
}

func TestRerank_RecencyIsAStepFunction(t *testing.T) {
	r := testReranker(t)

	// Window is 5 years from 2026: 2021 is recent, 2020 is not.
	if !r.IsRecent(2021) {
		t.Fatal("expected a paper exactly at the window edge to be recent")
	}
	if r.IsRecent(2020) {
		t.Fatal("expected a paper one year past the window to not be recent")
	}
	if r.IsRecent(0) {
		t.Fatal("expected unknown year to not be recent")
	}
}

func TestRerank_FilterMatchBoost(t *testing.T) {
	r := testReranker(t)

	passages := []common.Passage{
		{ID: "match", Score: 0.5, Year: 2010, Proteins: []string{"SIRT6"}, Theories: []string{"cellular_senescence"}},
		{ID: "wrong-protein", Score: 0.5, Year: 2010, Proteins: []string{"TP53"}, Theories: []string{"cellular_senescence"}},
		{ID: "wrong-theory", Score: 0.5, Year: 2010, Proteins: []string{"SIRT6"}, Theories: []string{"telomere_attrition"}},
	}
	q := common.Query{
		Text:     "q",
		Protein:  "sirt6",
		Theories: []string{"cellular_senescence"},
		TopK:     5,
	}
	got := r.Rerank(passages, q)
	if got[0].ID != "match" {
		t.Fatalf("expected fully matching passage first, got %q", got[0].ID)
	}
	expectScore(t, got[0].RankScore, 0.5*0.7+0.1)
	expectScore(t, got[1].RankScore, 0.5*0.7)
	expectScore(t, got[2].RankScore, 0.5*0.7)
}

func TestRerank_TiesBreakOnSimilarityThenOrder(t *testing.T) {
	r := testReranker(t)

	// b and c tie on the combined score; b's higher raw similarity wins.
	// c and d tie completely; insertion order holds.
	passages := []common.Passage{
		{ID: "c", Score: 0.5, Year: 2025},
		{ID: "d", Score: 0.5, Year: 2025},
		{ID: "b", Score: 0.7, Year: 2010},
	}
	q := common.Query{Text: "q", TopK: 5}
	// 0.5*0.7 + 0.2 + 0.1 = 0.65 for c and d; 0.7*0.7 + 0.1 = 0.59 for b.
	got := r.Rerank(passages, q)
	if got[0].ID != "c" || got[1].ID != "d" || got[2].ID != "b" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRerank_TruncatesToTopK(t *testing.T) {
	r := testReranker(t)

	passages := []common.Passage{
		{ID: "a", Score: 0.9, Year: 2010},
		{ID: "b", Score: 0.8, Year: 2010},
		{ID: "c", Score: 0.7, Year: 2010},
	}
	got := r.Rerank(passages, common.Query{Text: "q", TopK: 2})
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected truncation: %v", got)
	}
}

func TestRerank_TopKZeroReturnsEmpty(t *testing.T) {
	r := testReranker(t)

	got := r.Rerank([]common.Passage{{ID: "a", Score: 0.9}}, common.Query{Text: "q", TopK: 0})
	if len(got) != 0 {
		t.Fatalf("expected empty result for top_k 0, got %v", got)
	}
}

func expectScore(t *testing.T, got, expected float64) {
	t.Helper()
	const epsilon = 1e-9
	if diff := got - expected; diff > epsilon || diff < -epsilon {
		t.Fatalf("expected score %v, got %v", expected, got)
	}
}
