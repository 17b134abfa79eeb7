package relevance

import (
	"strings"
	"testing"

	"github.com/prolong-bio/prolong/pkg/vocab"
)

func testScorer(t *testing.T) *Scorer {
	t.Helper()
	theories := vocab.NewTheoryRegistry([]vocab.Theory{
		{ID: "telomere_attrition", Label: "Telomere Attrition", Terms: []string{"telomere", "telomerase"}},
		{ID: "cellular_senescence", Label: "Cellular Senescence", Terms: []string{"senescence"}},
		{ID: "mitochondrial_dysfunction", Label: "Mitochondrial Dysfunction", Terms: []string{"mitochondrial dysfunction"}},
	})
	v := vocab.New(vocab.NewProteinRegistry(nil), theories, nil)
	return NewScorer(DefaultConfig(), v)
}

func TestAnalyze_ScoreAndBand(t *testing.T) {
	s := testScorer(t)

	tests := []struct {
		name          string
		text          string
		expectedBand  string
		hasConnection bool
	}{
		{
			name:          "no aging content",
			text:          "the protein binds calcium in muscle tissue",
			expectedBand:  BandLow,
			hasConnection: false,
		},
		{
			name: "single keyword",
			// 1 keyword * 0.1 = 0.1
			text:          "implicated in longevity",
			expectedBand:  BandLow,
			hasConnection: true,
		},
		{
			name: "theories plus keywords",
			// 2 theories * 0.15 + 3 keywords (telomere, senescence,
			// cellular senescence) * 0.1 = 0.6.
			text:          "telomere attrition and cellular senescence",
			expectedBand:  BandModerate,
			hasConnection: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := s.Analyze(test.text)
			if got.Band != test.expectedBand {
				t.Fatalf("expected band %q, got %q (score %v)", test.expectedBand, got.Band, got.Score)
			}
			if got.HasConnection != test.hasConnection {
				t.Fatalf("expected has_connection=%v, got %v", test.hasConnection, got.HasConnection)
			}
		})
	}
}

func TestAnalyze_ScoreClampedToOne(t *testing.T) {
	s := testScorer(t)

	text := "aging ageing longevity lifespan senescence telomere autophagy " +
		"inflammation mitochondrial oxidative stress epigenetic rejuvenation"
	got := s.Analyze(text)
	if got.Score != 1.0 {
		t.Fatalf("expected clamped score 1.0, got %v", got.Score)
	}
	if got.Band != BandHigh {
		t.Fatalf("expected high band, got %q", got.Band)
	}
}

func TestAnalyze_Connections(t *testing.T) {
	s := testScorer(t)

	got := s.Analyze("telomere maintenance counteracts cellular senescence")
	expectContains(t, got.Connections, "Associated with telomere maintenance")
	expectContains(t, got.Connections, "Linked to cellular senescence pathways")
	expectContains(t, got.Connections, "Relates to the Telomere Attrition theory of aging")

	seen := make(map[string]struct{})
	for _, c := range got.Connections {
		if _, dup := seen[c]; dup {
			t.Fatalf("duplicate connection %q", c)
		}
		seen[c] = struct{}{}
	}
}

func TestAnalyze_ConnectionsCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConnections = 2
	theories := vocab.NewTheoryRegistry(nil)
	v := vocab.New(vocab.NewProteinRegistry(nil), theories, nil)
	s := NewScorer(cfg, v)

	got := s.Analyze("telomere senescence autophagy inflammation longevity")
	if len(got.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d: %v", len(got.Connections), got.Connections)
	}
}

func TestAnalyze_TaggedTheoriesJoinUnion(t *testing.T) {
	s := testScorer(t)

	// The text itself carries no aging content; the tagged theory alone must
	// produce the score.
	got := s.Analyze("the protein binds calcium in muscle tissue", "cellular_senescence")
	if diff := got.Score - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected score 0.15 from the tagged theory, got %v", got.Score)
	}
	if !got.HasConnection {
		t.Fatal("expected connection from the tagged theory")
	}
	if len(got.Theories) != 1 || got.Theories[0] != "cellular_senescence" {
		t.Fatalf("unexpected theories: %v", got.Theories)
	}
	expectContains(t, got.Connections, "Relates to the Cellular Senescence theory of aging")

	// A tag already found in the text must not count twice.
	got = s.Analyze("cellular senescence in tissue", "cellular_senescence")
	if len(got.Theories) != 1 {
		t.Fatalf("expected deduplicated theory union, got %v", got.Theories)
	}

	// Tags outside the vocabulary are ignored.
	got = s.Analyze("the protein binds calcium", "not_a_theory")
	if got.Score != 0 || got.HasConnection {
		t.Fatalf("expected unknown tag to be ignored, got %+v", got)
	}
}

func TestAnalyze_TheoriesIdentified(t *testing.T) {
	s := testScorer(t)

	got := s.Analyze("telomerase activity and mitochondrial dysfunction")
	if len(got.Theories) != 2 {
		t.Fatalf("expected 2 theories, got %v", got.Theories)
	}
}

func TestIsAgingQuery(t *testing.T) {
	s := testScorer(t)

	isAging, keywords := s.IsAgingQuery("What role does SIRT6 play in longevity and autophagy?")
	if !isAging {
		t.Fatal("expected query to be aging related")
	}
	if len(keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %v", keywords)
	}

	if isAging, _ := s.IsAgingQuery("How does hemoglobin carry oxygen?"); isAging {
		t.Fatal("did not expect query to be aging related")
	}
}

func expectContains(t *testing.T, haystack []string, want string) {
	t.Helper()
	for _, s := range haystack {
		if s == want {
			return
		}
	}
	t.Fatalf("expected %q in %v", want, haystack)
}

func TestAnalyze_KeywordMatchIsSubstring(t *testing.T) {
	s := testScorer(t)

	got := s.Analyze("anti-aging interventions")
	if !got.HasConnection {
		t.Fatal("expected substring keyword match on anti-aging")
	}
	found := false
	for _, kw := range vocab.DefaultAgingKeywords {
		if kw == "aging" && strings.Contains("anti-aging", kw) {
			found = true
		}
	}
	if !found {
		t.Fatal("default keyword list no longer contains aging")
	}
}
