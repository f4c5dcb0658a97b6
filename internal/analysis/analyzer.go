// Package analysis classifies food label ingredients against the reference
// tables and derives the nutrition and health risk scores.
//
// Everything here is pure and synchronous: the same input always produces the
// same Report and nothing is retained between calls.
package analysis

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/noot-app/ingredient-analyzer/internal/reference"
)

// Match is an additive table entry matched by a token
type Match struct {
	Key    string
	Record reference.AdditiveRecord
}

// Classification is the result of classifying one token
type Classification struct {
	Token    string
	Allergen bool
	Additive *Match
}

// Report is the outcome of analyzing one ingredients string
type Report struct {
	Tokens          []string
	AllergenHits    []string
	AdditiveHits    []string
	NutritionScore  int
	HealthRiskScore int

	// Classifications holds one entry per token, in token order
	Classifications []Classification
}

// Analyzer classifies ingredients against a fixed set of reference tables
type Analyzer struct {
	tables *reference.Tables
}

// New creates an analyzer over the given tables
func New(tables *reference.Tables) *Analyzer {
	return &Analyzer{tables: tables}
}

// Default creates an analyzer over the embedded reference tables
func Default() *Analyzer {
	return New(reference.Default())
}

// Tables returns the reference tables the analyzer classifies against
func (a *Analyzer) Tables() *reference.Tables {
	return a.tables
}

// Tokenize lowercases raw, splits it on commas and drops blank pieces.
// Token order follows the input; duplicates are kept.
func Tokenize(raw string) []string {
	pieces := strings.Split(strings.ToLower(raw), ",")
	tokens := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// IsAllergen reports whether any allergen name occurs inside token.
// There is no word boundary check: "wheatgrass" contains "wheat".
func (a *Analyzer) IsAllergen(token string) bool {
	found := false
	a.tables.Allergens.Each(func(name string) bool {
		if strings.Contains(token, name) {
			found = true
			return false
		}
		return true
	})
	return found
}

// MatchAdditive returns the first additive, in table order, whose key occurs
// inside token. Returns nil when nothing matches.
func (a *Analyzer) MatchAdditive(token string) *Match {
	var match *Match
	a.tables.Additives.Each(func(e reference.AdditiveEntry) bool {
		if strings.Contains(token, e.Key) {
			match = &Match{Key: e.Key, Record: e.AdditiveRecord}
			return false
		}
		return true
	})
	return match
}

// Classify runs both matchers against a single token
func (a *Analyzer) Classify(token string) Classification {
	return Classification{
		Token:    token,
		Allergen: a.IsAllergen(token),
		Additive: a.MatchAdditive(token),
	}
}

// NutritionScore is the rounded percentage of tokens without an additive match.
// Callers never pass an empty slice; it scores 0 if they do.
func (a *Analyzer) NutritionScore(tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	natural := 0
	for _, t := range tokens {
		if a.MatchAdditive(t) == nil {
			natural++
		}
	}
	return nutritionScore(natural, len(tokens))
}

// HealthRiskScore is the capped average risk over tokens with an additive match
func (a *Analyzer) HealthRiskScore(tokens []string) int {
	matches := make([]*Match, 0, len(tokens))
	for _, t := range tokens {
		if m := a.MatchAdditive(t); m != nil {
			matches = append(matches, m)
		}
	}
	return healthRiskScore(matches)
}

// Analyze classifies every ingredient in raw. ok is false for blank input,
// in which case no report is produced.
func (a *Analyzer) Analyze(raw string) (report *Report, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	tokens := Tokenize(raw)
	r := &Report{
		Tokens:          tokens,
		AllergenHits:    []string{},
		AdditiveHits:    []string{},
		Classifications: make([]Classification, 0, len(tokens)),
	}

	natural := 0
	matches := make([]*Match, 0, len(tokens))
	for _, t := range tokens {
		c := a.Classify(t)
		r.Classifications = append(r.Classifications, c)
		if c.Allergen {
			r.AllergenHits = append(r.AllergenHits, t)
		}
		if c.Additive != nil {
			r.AdditiveHits = append(r.AdditiveHits, t)
			matches = append(matches, c.Additive)
		} else {
			natural++
		}
	}

	// Input like ",,," is non-blank but yields no tokens
	if len(tokens) > 0 {
		r.NutritionScore = nutritionScore(natural, len(tokens))
	}
	r.HealthRiskScore = healthRiskScore(matches)
	return r, true
}

// HealthCheck fails when the analyzer has nothing to classify against
func (a *Analyzer) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.tables == nil {
		return errors.New("reference tables not loaded")
	}
	if a.tables.Allergens.Len() == 0 && a.tables.Additives.Len() == 0 {
		return errors.New("reference tables are empty")
	}
	return nil
}

func nutritionScore(natural, total int) int {
	return int(math.Round(100 * float64(natural) / float64(total)))
}

func healthRiskScore(matches []*Match) int {
	if len(matches) == 0 {
		return 0
	}
	total := 0
	for _, m := range matches {
		total += Risk(m.Record)
	}
	avg := int(math.Round(float64(total) / float64(len(matches))))
	return min(100, avg)
}

// Risk is the health risk contribution of a single matched additive.
// The category bonuses stack with the concern value.
func Risk(r reference.AdditiveRecord) int {
	risk := 0
	switch r.Concern {
	case reference.ConcernHigh:
		risk = 100
	case reference.ConcernModerate:
		risk = 50
	case reference.ConcernLow:
		risk = 20
	}

	switch r.Category {
	case reference.CategoryPreservative, reference.CategoryColor:
		risk += 10
	case reference.CategoryAlcoholicBeverage, reference.CategoryPsychoactiveSubstance:
		risk += 50
	}
	return risk
}
