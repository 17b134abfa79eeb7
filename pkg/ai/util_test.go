package ai

import (
	"testing"
)

type extraction struct {
	Name  string   `json:"name"`
	Terms []string `json:"terms"`
}

func TestUnmarshalFlexible_StandardJSON(t *testing.T) {
	var out extraction
	err := UnmarshalFlexible(`{"name": "SIRT6", "terms": ["longevity"]}`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "SIRT6" || len(out.Terms) != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	var out extraction
	err := UnmarshalFlexible(`"{\"name\": \"TP53\", \"terms\": []}"`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "TP53" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_RepairsMalformed(t *testing.T) {
	var out extraction
	err := UnmarshalFlexible(`{name: "KL", terms: ["klotho",]}`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "KL" || len(out.Terms) != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnmarshalFlexible_DuplicateLeadingBrace(t *testing.T) {
	var out extraction
	err := UnmarshalFlexible(`{{"name": "FOXO3", "terms": []}`, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "FOXO3" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestGenerateSchema_InlinesType(t *testing.T) {
	schema := GenerateSchema(&extraction{})
	if schema == nil {
		t.Fatal("expected non-nil schema")
	}
}
