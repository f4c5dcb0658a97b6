package types

import (
	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/reference"
)

// Score bands used for display
const (
	BandLow      = "low"
	BandModerate = "moderate"
	BandHigh     = "high"
)

// AllergenDisclaimer accompanies every allergen listing
const AllergenDisclaimer = "This analysis is not a substitute for medical advice. If you have food allergies, always consult the manufacturer for the most accurate information."

// BlankInputMessage is shown instead of a report when no ingredients were given
const BlankInputMessage = "Please enter ingredients to analyze"

// AnalysisReport is the canonical view of an analysis, shared by the CLI, REST API and MCP tools
type AnalysisReport struct {
	Summary         Summary          `json:"summary"`
	Ingredients     []IngredientView `json:"ingredients"`
	Allergens       []string         `json:"allergens"`
	Additives       []AdditiveDetail `json:"additives"`
	NutritionScore  Score            `json:"nutrition_score"`
	HealthRiskScore Score            `json:"health_risk_score"`
	Disclaimer      string           `json:"disclaimer"`
}

// Summary holds the overview counts
type Summary struct {
	TotalIngredients int `json:"total_ingredients"`
	AllergenCount    int `json:"allergen_count"`
	AdditiveCount    int `json:"additive_count"`
}

// IngredientView is one ingredient with its classification badges
type IngredientView struct {
	Name     string `json:"name"`
	Allergen bool   `json:"allergen"`
	Additive bool   `json:"additive"`
}

// AdditiveDetail describes an ingredient that matched the additive table
type AdditiveDetail struct {
	Ingredient       string            `json:"ingredient"`
	MatchedKey       string            `json:"matched_key"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Concern          reference.Concern `json:"concern"`
	Risk             int               `json:"risk"`
	ShortTermEffects string            `json:"short_term_effects,omitempty"`
	LongTermEffects  string            `json:"long_term_effects,omitempty"`
	RegulatoryStatus string            `json:"regulatory_status,omitempty"`
	DailyLimit       string            `json:"daily_limit,omitempty"`
}

// Score is a 0-100 score with its display band
type Score struct {
	Value int    `json:"value"`
	Band  string `json:"band"`
}

// SimplifiedReport is a lean report for reduced token consumption
type SimplifiedReport struct {
	TotalIngredients int      `json:"total_ingredients"`
	Allergens        []string `json:"allergens"`
	Additives        []string `json:"additives"`
	NutritionScore   Score    `json:"nutrition_score"`
	HealthRiskScore  Score    `json:"health_risk_score"`
}

// NutritionBand buckets a nutrition score; higher is better
func NutritionBand(score int) string {
	switch {
	case score > 70:
		return BandHigh
	case score > 40:
		return BandModerate
	default:
		return BandLow
	}
}

// RiskBand buckets a health risk score; lower is better
func RiskBand(score int) string {
	switch {
	case score < 30:
		return BandLow
	case score < 60:
		return BandModerate
	default:
		return BandHigh
	}
}

// FromReport converts an analysis report to its view
func FromReport(r *analysis.Report) AnalysisReport {
	view := AnalysisReport{
		Summary: Summary{
			TotalIngredients: len(r.Tokens),
			AllergenCount:    len(r.AllergenHits),
			AdditiveCount:    len(r.AdditiveHits),
		},
		Ingredients:     make([]IngredientView, 0, len(r.Classifications)),
		Allergens:       append([]string{}, r.AllergenHits...),
		Additives:       make([]AdditiveDetail, 0, len(r.AdditiveHits)),
		NutritionScore:  Score{Value: r.NutritionScore, Band: NutritionBand(r.NutritionScore)},
		HealthRiskScore: Score{Value: r.HealthRiskScore, Band: RiskBand(r.HealthRiskScore)},
		Disclaimer:      AllergenDisclaimer,
	}

	for _, c := range r.Classifications {
		view.Ingredients = append(view.Ingredients, IngredientView{
			Name:     c.Token,
			Allergen: c.Allergen,
			Additive: c.Additive != nil,
		})
		if c.Additive != nil {
			view.Additives = append(view.Additives, NewAdditiveDetail(c.Token, c.Additive))
		}
	}

	return view
}

// NewAdditiveDetail builds the detail view for a matched ingredient
func NewAdditiveDetail(ingredient string, m *analysis.Match) AdditiveDetail {
	return AdditiveDetail{
		Ingredient:       ingredient,
		MatchedKey:       m.Key,
		Description:      m.Record.Description,
		Category:         m.Record.Category,
		Concern:          m.Record.Concern,
		Risk:             analysis.Risk(m.Record),
		ShortTermEffects: m.Record.ShortTermEffects,
		LongTermEffects:  m.Record.LongTermEffects,
		RegulatoryStatus: m.Record.RegulatoryStatus,
		DailyLimit:       m.Record.DailyLimit,
	}
}

// ToSimplified converts a full AnalysisReport to a SimplifiedReport
func (r AnalysisReport) ToSimplified() SimplifiedReport {
	simplified := SimplifiedReport{
		TotalIngredients: r.Summary.TotalIngredients,
		Allergens:        append([]string{}, r.Allergens...),
		Additives:        make([]string, 0, len(r.Additives)),
		NutritionScore:   r.NutritionScore,
		HealthRiskScore:  r.HealthRiskScore,
	}
	for _, a := range r.Additives {
		simplified.Additives = append(simplified.Additives, a.Ingredient)
	}
	return simplified
}
