// Package entity extracts known protein symbols and aging-theory labels from
// free text. Matching is case-insensitive and whole-word only; overlapping
// vocabulary entries resolve longest-match-first, so "SIRT1" never also
// registers as "SIRT".
package entity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/prolong-bio/prolong/pkg/vocab"
)

// Extractor scans text against a fixed vocabulary. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	proteinPattern *regexp.Regexp
	theoryPattern  *regexp.Regexp

	// lower-cased matched text -> canonical identifier
	proteinNorm map[string]string
	theoryNorm  map[string]string
}

// NewExtractor compiles matching patterns for the vocabulary's protein
// symbols and theory terms.
func NewExtractor(v *vocab.Vocabulary) *Extractor {
	e := &Extractor{
		proteinNorm: make(map[string]string),
		theoryNorm:  make(map[string]string),
	}

	proteinTerms := make([]string, 0, v.Proteins.Count())
	for _, symbol := range v.Proteins.Symbols() {
		proteinTerms = append(proteinTerms, symbol)
		e.proteinNorm[strings.ToLower(symbol)] = symbol
	}
	e.proteinPattern = compileVocabPattern(proteinTerms)

	var theoryTerms []string
	for _, t := range v.Theories.All() {
		terms := append([]string{t.Label}, t.Terms...)
		for _, term := range terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			key := strings.ToLower(term)
			if _, exists := e.theoryNorm[key]; exists {
				continue
			}
			e.theoryNorm[key] = t.ID
			theoryTerms = append(theoryTerms, term)
		}
	}
	e.theoryPattern = compileVocabPattern(theoryTerms)

	return e
}

// compileVocabPattern builds a single case-insensitive, word-bounded
// alternation. Alternatives are sorted longest-first so the regexp engine
// prefers the longer entry when two entries start at the same position.
func compileVocabPattern(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	escaped := make([]string, len(sorted))
	for i, term := range sorted {
		escaped[i] = regexp.QuoteMeta(term)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// Extract returns the distinct protein symbols and theory ids mentioned in
// text, each in order of first appearance.
func (e *Extractor) Extract(text string) (proteins []string, theories []string) {
	return e.Proteins(text), e.Theories(text)
}

// Proteins returns the distinct canonical protein symbols mentioned in text,
// in order of first appearance.
func (e *Extractor) Proteins(text string) []string {
	return scan(e.proteinPattern, e.proteinNorm, text)
}

// Theories returns the distinct theory ids whose label or terms appear in
// text, in order of first appearance.
func (e *Extractor) Theories(text string) []string {
	return scan(e.theoryPattern, e.theoryNorm, text)
}

// HasProtein reports whether the given protein symbol is mentioned in text.
func (e *Extractor) HasProtein(text, symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, found := range e.Proteins(text) {
		if found == symbol {
			return true
		}
	}
	return false
}

func scan(pattern *regexp.Regexp, norm map[string]string, text string) []string {
	if pattern == nil || text == "" {
		return nil
	}

	var found []string
	seen := make(map[string]struct{})
	for _, match := range pattern.FindAllString(text, -1) {
		canonical, ok := norm[strings.ToLower(match)]
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		found = append(found, canonical)
	}
	return found
}
