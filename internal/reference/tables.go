package reference

import (
	"fmt"
	"strings"
)

// Concern is the severity tag attached to an additive record.
// Values other than the three below are kept as loaded and carry no base risk.
type Concern string

const (
	ConcernLow      Concern = "low"
	ConcernModerate Concern = "moderate"
	ConcernHigh     Concern = "high"
)

// Categories with special meaning for health risk scoring
const (
	CategoryPreservative          = "preservative"
	CategoryColor                 = "color"
	CategoryAlcoholicBeverage     = "alcoholic beverage"
	CategoryPsychoactiveSubstance = "psychoactive substance"
)

// AdditiveRecord describes a single additive
type AdditiveRecord struct {
	Description      string  `yaml:"description" json:"description"`
	Category         string  `yaml:"category" json:"category"`
	Concern          Concern `yaml:"concern" json:"concern"`
	ShortTermEffects string  `yaml:"short_term_effects" json:"short_term_effects"`
	LongTermEffects  string  `yaml:"long_term_effects" json:"long_term_effects"`
	RegulatoryStatus string  `yaml:"regulatory_status" json:"regulatory_status"`
	DailyLimit       string  `yaml:"daily_limit" json:"daily_limit"`
}

// AdditiveEntry pairs a lookup key with its record
type AdditiveEntry struct {
	Key            string `yaml:"key" json:"key"`
	AdditiveRecord `yaml:",inline"`
}

// AllergenTable is an ordered, read-only list of lowercase allergen names
type AllergenTable struct {
	names []string
}

// NewAllergenTable normalizes names to lowercase and rejects blanks and duplicates
func NewAllergenTable(names []string) (AllergenTable, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for i, raw := range names {
		name := normalize(raw)
		if name == "" {
			return AllergenTable{}, fmt.Errorf("allergen %d: empty name", i)
		}
		if _, dup := seen[name]; dup {
			return AllergenTable{}, fmt.Errorf("allergen %q: duplicate entry", name)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return AllergenTable{names: out}, nil
}

// Names returns a copy of the allergen names in table order
func (t AllergenTable) Names() []string {
	return append([]string{}, t.names...)
}

// Len returns the number of allergens
func (t AllergenTable) Len() int {
	return len(t.names)
}

// Each calls fn for every allergen in order until fn returns false
func (t AllergenTable) Each(fn func(name string) bool) {
	for _, name := range t.names {
		if !fn(name) {
			return
		}
	}
}

// AdditiveTable is an ordered, read-only list of additive records.
// Enumeration order is the declaration order of the source document.
type AdditiveTable struct {
	entries []AdditiveEntry
}

// NewAdditiveTable normalizes keys to lowercase and rejects blanks and duplicates
func NewAdditiveTable(entries []AdditiveEntry) (AdditiveTable, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]AdditiveEntry, 0, len(entries))
	for i, e := range entries {
		e.Key = normalize(e.Key)
		if e.Key == "" {
			return AdditiveTable{}, fmt.Errorf("additive %d: empty key", i)
		}
		if _, dup := seen[e.Key]; dup {
			return AdditiveTable{}, fmt.Errorf("additive %q: duplicate entry", e.Key)
		}
		e.Category = normalize(e.Category)
		e.Concern = Concern(normalize(string(e.Concern)))
		seen[e.Key] = struct{}{}
		out = append(out, e)
	}
	return AdditiveTable{entries: out}, nil
}

// Entries returns a copy of the entries in table order
func (t AdditiveTable) Entries() []AdditiveEntry {
	return append([]AdditiveEntry{}, t.entries...)
}

// Len returns the number of additives
func (t AdditiveTable) Len() int {
	return len(t.entries)
}

// Each calls fn for every entry in table order until fn returns false
func (t AdditiveTable) Each(fn func(entry AdditiveEntry) bool) {
	for _, e := range t.entries {
		if !fn(e) {
			return
		}
	}
}

// Tables bundles the two reference tables used for classification
type Tables struct {
	Allergens AllergenTable
	Additives AdditiveTable
}

// NewTables builds Tables from raw allergen names and additive entries
func NewTables(allergens []string, additives []AdditiveEntry) (*Tables, error) {
	at, err := NewAllergenTable(allergens)
	if err != nil {
		return nil, fmt.Errorf("invalid allergen table: %w", err)
	}
	dt, err := NewAdditiveTable(additives)
	if err != nil {
		return nil, fmt.Errorf("invalid additive table: %w", err)
	}
	return &Tables{Allergens: at, Additives: dt}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
