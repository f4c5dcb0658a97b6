package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/noot-app/ingredient-analyzer/internal/batch"
	"github.com/noot-app/ingredient-analyzer/internal/config"
	"github.com/noot-app/ingredient-analyzer/internal/query"
	"github.com/noot-app/ingredient-analyzer/internal/render"
	"github.com/spf13/cobra"
)

// newQueryEngine is swapped in tests
var newQueryEngine = query.NewQueryEngine

// openQueryEngine creates the query engine and checks it answers before any rows are read
func openQueryEngine(ctx context.Context, logger *slog.Logger) (query.QueryEngine, error) {
	engine, err := newQueryEngine(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create query engine: %w", err)
	}
	if err := engine.TestConnection(ctx); err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("query engine unavailable: %w", err)
	}
	return engine, nil
}

func newBatchCmd() *cobra.Command {
	var (
		src    query.Source
		format string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every ingredients list in a CSV, TSV, Parquet or JSON file",
		Long: `Analyze every row of a local data file with DuckDB, e.g.

  ingredient-analyzer batch --input products.csv --column ingredients_text --id-column code

Rows with blank ingredients are counted as skipped. BATCH_LIMIT caps the
number of rows unless --limit is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg := config.Load()
			logger := config.NewLogger(true)

			if !cmd.Flags().Changed("limit") {
				src.Limit = cfg.BatchLimit
			}

			analyzer, err := loadAnalyzer()
			if err != nil {
				return err
			}

			engine, err := openQueryEngine(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer engine.Close()

			summary, err := batch.NewRunner(engine, analyzer, logger).Run(cmd.Context(), src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.Resolve(out) == render.FormatText {
				return render.New(out).Batch(summary)
			}
			return render.New(out).JSON(summary)
		},
	}

	cmd.Flags().StringVarP(&src.Path, "input", "i", "", "Input file (.csv, .tsv, .parquet, .json, .jsonl)")
	cmd.Flags().StringVarP(&src.Column, "column", "c", "", "Column holding the ingredients text")
	cmd.Flags().StringVar(&src.IDColumn, "id-column", "", "Column identifying each row (default: row number)")
	cmd.Flags().IntVarP(&src.Limit, "limit", "n", 0, "Maximum number of rows to analyze (0 for no limit)")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatAuto), "Output format: auto, text or json")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}
