package types

import (
	"encoding/json"
	"testing"

	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNutritionBand(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, BandHigh},
		{71, BandHigh},
		{70, BandModerate},
		{41, BandModerate},
		{40, BandLow},
		{0, BandLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NutritionBand(tt.score), "score %d", tt.score)
	}
}

func TestRiskBand(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{0, BandLow},
		{29, BandLow},
		{30, BandModerate},
		{59, BandModerate},
		{60, BandHigh},
		{100, BandHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RiskBand(tt.score), "score %d", tt.score)
	}
}

func TestFromReport(t *testing.T) {
	report, ok := analysis.Default().Analyze("Water, Sugar, Salt, Milk, Red 40")
	require.True(t, ok)

	view := FromReport(report)

	assert.Equal(t, Summary{TotalIngredients: 5, AllergenCount: 1, AdditiveCount: 3}, view.Summary)
	assert.Equal(t, []string{"milk"}, view.Allergens)
	assert.Equal(t, AllergenDisclaimer, view.Disclaimer)

	require.Len(t, view.Ingredients, 5)
	assert.Equal(t, IngredientView{Name: "water"}, view.Ingredients[0])
	assert.Equal(t, IngredientView{Name: "sugar", Additive: true}, view.Ingredients[1])
	assert.Equal(t, IngredientView{Name: "milk", Allergen: true}, view.Ingredients[3])

	require.Len(t, view.Additives, 3)
	red := view.Additives[2]
	assert.Equal(t, "red 40", red.Ingredient)
	assert.Equal(t, "red 40", red.MatchedKey)
	assert.Equal(t, "color", red.Category)
	assert.Equal(t, reference.ConcernModerate, red.Concern)
	assert.Equal(t, 60, red.Risk)
	assert.NotEmpty(t, red.Description)
	assert.NotEmpty(t, red.RegulatoryStatus)

	// 2 of 5 natural, risks 50 + 20 + 60
	assert.Equal(t, Score{Value: 40, Band: BandLow}, view.NutritionScore)
	assert.Equal(t, Score{Value: 43, Band: BandModerate}, view.HealthRiskScore)
}

func TestFromReport_EmptyListsMarshalAsArrays(t *testing.T) {
	report, ok := analysis.Default().Analyze("water")
	require.True(t, ok)

	data, err := json.Marshal(FromReport(report))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{}, decoded["allergens"])
	assert.Equal(t, []interface{}{}, decoded["additives"])
}

func TestAnalysisReport_ToSimplified(t *testing.T) {
	report, ok := analysis.Default().Analyze("Wine, Water, Eggs")
	require.True(t, ok)

	view := FromReport(report)
	simplified := view.ToSimplified()

	assert.Equal(t, 3, simplified.TotalIngredients)
	assert.Equal(t, []string{"eggs"}, simplified.Allergens)
	assert.Equal(t, []string{"wine"}, simplified.Additives)
	assert.Equal(t, Score{Value: 67, Band: BandModerate}, simplified.NutritionScore)
	assert.Equal(t, Score{Value: 100, Band: BandHigh}, simplified.HealthRiskScore)
}

func TestAnalysisReport_ToSimplified_OnReturnedValue(t *testing.T) {
	report, ok := analysis.Default().Analyze("Water, Sugar, Salt")
	require.True(t, ok)

	simplified := FromReport(report).ToSimplified()

	assert.Equal(t, 3, simplified.TotalIngredients)
	assert.Equal(t, []string{}, simplified.Allergens)
	assert.Equal(t, []string{"sugar", "salt"}, simplified.Additives)
	assert.Equal(t, 35, simplified.HealthRiskScore.Value)
}

func TestFromTables(t *testing.T) {
	view := FromTables(reference.Default())

	assert.Equal(t, "milk", view.Allergens[0])
	assert.Equal(t, "sugar", view.Additives[0].Key)

	data, err := json.Marshal(view.Additives[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"key":"sugar"`)
	assert.Contains(t, string(data), `"concern":"moderate"`)
	assert.Contains(t, string(data), `"daily_limit":`)
}
