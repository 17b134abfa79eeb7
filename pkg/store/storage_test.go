package store

import "testing"

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero falls back to default", 0, DefaultSearchLimit},
		{"negative falls back to default", -10, DefaultSearchLimit},
		{"in range passes through", 12, 12},
		{"above max clamps", 500, MaxSearchLimit},
		{"max passes through", MaxSearchLimit, MaxSearchLimit},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ClampLimit(test.limit); got != test.expected {
				t.Fatalf("expected %d, got %d", test.expected, got)
			}
		})
	}
}

func TestFilters_IsZero(t *testing.T) {
	if !(Filters{}).IsZero() {
		t.Fatal("empty filters must be zero")
	}
	if (Filters{Protein: "SIRT6"}).IsZero() {
		t.Fatal("protein filter must not be zero")
	}
	if (Filters{Theories: []string{"dysbiosis"}}).IsZero() {
		t.Fatal("theory filter must not be zero")
	}
}
