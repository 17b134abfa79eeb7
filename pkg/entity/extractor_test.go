package entity

import (
	"reflect"
	"testing"

	"github.com/prolong-bio/prolong/pkg/vocab"
)

func testExtractor(t *testing.T) *Extractor {
	t.Helper()

	proteins := vocab.NewProteinRegistry([]vocab.Protein{
		{GenAgeID: "1", Symbol: "SIRT"},
		{GenAgeID: "2", Symbol: "SIRT1"},
		{GenAgeID: "3", Symbol: "APOE"},
		{GenAgeID: "4", Symbol: "TP53"},
	})
	theories := vocab.NewTheoryRegistry([]vocab.Theory{
		{ID: "telomere_attrition", Label: "Telomere Attrition", Terms: []string{"telomere", "telomerase"}},
		{ID: "cellular_senescence", Label: "Cellular Senescence", Terms: []string{"senescence", "senescent"}},
		{ID: "genomic_instability", Label: "Genomic Instability", Terms: []string{"DNA damage", "genomic"}},
	})
	return NewExtractor(vocab.New(proteins, theories, nil))
}

func TestProteins_CaseInsensitive(t *testing.T) {
	e := testExtractor(t)

	got := e.Proteins("Recent work on Sirt1 and apoe variants")
	expected := []string{"SIRT1", "APOE"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestProteins_WholeWordOnly(t *testing.T) {
	e := testExtractor(t)

	if got := e.Proteins("the sirt1ase enzyme family"); got != nil {
		t.Fatalf("expected no matches inside longer word, got %v", got)
	}
	if got := e.Proteins("TP53-mediated repair"); !reflect.DeepEqual(got, []string{"TP53"}) {
		t.Fatalf("expected hyphen to act as a word boundary, got %v", got)
	}
}

func TestProteins_LongestMatchFirst(t *testing.T) {
	e := testExtractor(t)

	// SIRT1 must not additionally register the shorter SIRT entry.
	got := e.Proteins("SIRT1 regulates metabolism")
	if !reflect.DeepEqual(got, []string{"SIRT1"}) {
		t.Fatalf("expected only SIRT1, got %v", got)
	}

	got = e.Proteins("SIRT family members such as SIRT1")
	if !reflect.DeepEqual(got, []string{"SIRT", "SIRT1"}) {
		t.Fatalf("expected SIRT then SIRT1, got %v", got)
	}
}

func TestProteins_DeduplicatesPreservingOrder(t *testing.T) {
	e := testExtractor(t)

	got := e.Proteins("APOE and TP53; APOE again")
	expected := []string{"APOE", "TP53"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestTheories_MatchesLabelAndTerms(t *testing.T) {
	e := testExtractor(t)

	got := e.Theories("Telomerase activity counteracts cellular senescence and DNA damage")
	expected := []string{"telomere_attrition", "cellular_senescence", "genomic_instability"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestTheories_MultiwordTermBoundaries(t *testing.T) {
	e := testExtractor(t)

	if got := e.Theories("mitochondrial dysfunction"); got != nil {
		t.Fatalf("expected no theory match, got %v", got)
	}
	got := e.Theories("evidence of DNA damage accumulation")
	if !reflect.DeepEqual(got, []string{"genomic_instability"}) {
		t.Fatalf("expected genomic_instability, got %v", got)
	}
}

func TestHasProtein(t *testing.T) {
	e := testExtractor(t)

	if !e.HasProtein("studies of Tp53 knockouts", "tp53") {
		t.Fatal("expected case-insensitive protein check to succeed")
	}
	if e.HasProtein("studies of Tp53 knockouts", "APOE") {
		t.Fatal("did not expect APOE to be found")
	}
}

func TestExtract_EmptyText(t *testing.T) {
	e := testExtractor(t)

	proteins, theories := e.Extract("")
	if proteins != nil || theories != nil {
		t.Fatalf("expected nil results for empty text, got %v / %v", proteins, theories)
	}
}
