// Package batch analyzes every label in a tabular source and aggregates the results.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/query"
	"github.com/noot-app/ingredient-analyzer/internal/types"
)

// Result is the analysis of a single row. Report is nil for skipped rows.
type Result struct {
	ID      string                  `json:"id"`
	Skipped bool                    `json:"skipped"`
	Report  *types.SimplifiedReport `json:"report,omitempty"`
}

// Summary aggregates a batch run
type Summary struct {
	Rows                int      `json:"rows"`
	Analyzed            int      `json:"analyzed"`
	Skipped             int      `json:"skipped"`
	RowsWithAllergens   int      `json:"rows_with_allergens"`
	MeanNutritionScore  int      `json:"mean_nutrition_score"`
	MeanHealthRiskScore int      `json:"mean_health_risk_score"`
	Results             []Result `json:"results"`
}

// Runner reads rows through a query engine and analyzes them one by one
type Runner struct {
	engine   query.QueryEngine
	analyzer *analysis.Analyzer
	log      *slog.Logger
}

// NewRunner creates a batch runner
func NewRunner(engine query.QueryEngine, analyzer *analysis.Analyzer, logger *slog.Logger) *Runner {
	return &Runner{
		engine:   engine,
		analyzer: analyzer,
		log:      logger,
	}
}

// Run analyzes every row of src. Blank rows are counted as skipped.
func (r *Runner) Run(ctx context.Context, src query.Source) (*Summary, error) {
	start := time.Now()

	rows, err := r.engine.ReadIngredients(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	summary := &Summary{
		Rows:    len(rows),
		Results: make([]Result, 0, len(rows)),
	}

	var nutritionTotal, riskTotal int
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Batch run cancelled", "processed", len(summary.Results), "rows", len(rows))
			return nil, err
		}

		report, ok := r.analyzer.Analyze(row.Ingredients)
		if !ok {
			r.log.Debug("Skipping blank row", "id", row.ID)
			summary.Skipped++
			summary.Results = append(summary.Results, Result{ID: row.ID, Skipped: true})
			continue
		}

		view := types.FromReport(report)
		simplified := view.ToSimplified()

		summary.Analyzed++
		nutritionTotal += report.NutritionScore
		riskTotal += report.HealthRiskScore
		if len(report.AllergenHits) > 0 {
			summary.RowsWithAllergens++
		}
		summary.Results = append(summary.Results, Result{ID: row.ID, Report: &simplified})
	}

	if summary.Analyzed > 0 {
		summary.MeanNutritionScore = mean(nutritionTotal, summary.Analyzed)
		summary.MeanHealthRiskScore = mean(riskTotal, summary.Analyzed)
	}

	r.log.Info("Batch run completed",
		"rows", summary.Rows,
		"analyzed", summary.Analyzed,
		"skipped", summary.Skipped,
		"duration", time.Since(start))

	return summary, nil
}

func mean(total, n int) int {
	return int(math.Round(float64(total) / float64(n)))
}
