package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Theory is one aging-mechanism category used to tag passages and answers.
// Label is the display name; Terms are the phrases whose presence in text
// marks the theory (including the label itself).
type Theory struct {
	ID          string   `json:"theory_id"`
	Label       string   `json:"label"`
	Terms       []string `json:"terms"`
	Description string   `json:"description,omitempty"`
}

// TheoryRegistry provides read-only lookups over the aging theories.
type TheoryRegistry struct {
	byID map[string]Theory
	ids  []string
}

// NewTheoryRegistry builds a registry from the given theories.
func NewTheoryRegistry(theories []Theory) *TheoryRegistry {
	r := &TheoryRegistry{
		byID: make(map[string]Theory, len(theories)),
	}
	for _, t := range theories {
		if t.ID == "" {
			continue
		}
		r.byID[t.ID] = t
	}
	r.ids = make([]string, 0, len(r.byID))
	for id := range r.byID {
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r
}

// GetByID looks a theory up by its id.
func (r *TheoryRegistry) GetByID(id string) (Theory, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Contains reports whether the given theory id exists in the registry.
func (r *TheoryRegistry) Contains(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns all theory ids sorted alphabetically. The returned slice is
// shared; callers must not modify it.
func (r *TheoryRegistry) IDs() []string {
	return r.ids
}

// All returns all theories sorted by id.
func (r *TheoryRegistry) All() []Theory {
	theories := make([]Theory, 0, len(r.ids))
	for _, id := range r.ids {
		theories = append(theories, r.byID[id])
	}
	return theories
}

// Count returns the number of theories in the registry.
func (r *TheoryRegistry) Count() int {
	return len(r.byID)
}

// Search returns theories whose label or terms contain the query,
// case-insensitively, sorted by id.
func (r *TheoryRegistry) Search(query string) []Theory {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []Theory
	for _, id := range r.ids {
		t := r.byID[id]
		if strings.Contains(strings.ToLower(t.Label), query) {
			results = append(results, t)
			continue
		}
		for _, term := range t.Terms {
			if strings.Contains(strings.ToLower(term), query) {
				results = append(results, t)
				break
			}
		}
	}
	return results
}

type theoriesFile struct {
	Theories []Theory `json:"theories"`
}

// LoadTheories reads the aging-theory dataset from a JSON file.
func LoadTheories(path string) ([]Theory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theory data: %w", err)
	}
	var file theoriesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse theory data: %w", err)
	}
	return file.Theories, nil
}
