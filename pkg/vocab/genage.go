package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Protein is a single entry from the GenAge Human Ageing Genomic Resources
// dataset.
type Protein struct {
	GenAgeID     string `json:"genage_id"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	EntrezGeneID string `json:"entrez_gene_id,omitempty"`
	UniProt      string `json:"uniprot,omitempty"`

	// Why lists the comma-separated inclusion categories from GenAge
	// (e.g. "mammal,cell").
	Why string `json:"why,omitempty"`
}

// WhyCategories splits the Why field into individual categories.
func (p Protein) WhyCategories() []string {
	if p.Why == "" {
		return nil
	}
	parts := strings.Split(p.Why, ",")
	categories := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}

// ProteinRegistry provides read-only lookups over the GenAge proteins.
// Symbols are normalized to upper case on insert and on lookup.
type ProteinRegistry struct {
	bySymbol  map[string]Protein
	byUniProt map[string]Protein
	symbols   []string
}

// NewProteinRegistry builds a registry from the given proteins. Later entries
// with a duplicate symbol overwrite earlier ones.
func NewProteinRegistry(proteins []Protein) *ProteinRegistry {
	r := &ProteinRegistry{
		bySymbol:  make(map[string]Protein, len(proteins)),
		byUniProt: make(map[string]Protein),
	}
	for _, p := range proteins {
		symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
		if symbol == "" {
			continue
		}
		p.Symbol = symbol
		r.bySymbol[symbol] = p
		if p.UniProt != "" {
			r.byUniProt[p.UniProt] = p
		}
	}
	r.symbols = make([]string, 0, len(r.bySymbol))
	for symbol := range r.bySymbol {
		r.symbols = append(r.symbols, symbol)
	}
	sort.Strings(r.symbols)
	return r
}

// GetBySymbol looks a protein up by gene symbol, case-insensitively.
func (r *ProteinRegistry) GetBySymbol(symbol string) (Protein, bool) {
	p, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return p, ok
}

// GetByUniProt looks a protein up by UniProt accession.
func (r *ProteinRegistry) GetByUniProt(uniprot string) (Protein, bool) {
	p, ok := r.byUniProt[uniprot]
	return p, ok
}

// Symbols returns all symbols sorted alphabetically. The returned slice is
// shared; callers must not modify it.
func (r *ProteinRegistry) Symbols() []string {
	return r.symbols
}

// All returns all proteins sorted by symbol.
func (r *ProteinRegistry) All() []Protein {
	proteins := make([]Protein, 0, len(r.symbols))
	for _, symbol := range r.symbols {
		proteins = append(proteins, r.bySymbol[symbol])
	}
	return proteins
}

// Count returns the number of proteins in the registry.
func (r *ProteinRegistry) Count() int {
	return len(r.bySymbol)
}

// CategoryDistribution counts proteins per GenAge inclusion category.
func (r *ProteinRegistry) CategoryDistribution() map[string]int {
	distribution := make(map[string]int)
	for _, p := range r.bySymbol {
		for _, category := range p.WhyCategories() {
			distribution[category]++
		}
	}
	return distribution
}

type genageFile struct {
	Proteins []Protein `json:"proteins"`
}

// LoadProteins reads the GenAge protein dataset from a JSON file.
func LoadProteins(path string) ([]Protein, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genage data: %w", err)
	}
	var file genageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse genage data: %w", err)
	}
	return file.Proteins, nil
}
