package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/config"
	"github.com/noot-app/ingredient-analyzer/internal/reference"
	"github.com/noot-app/ingredient-analyzer/internal/render"
	"github.com/noot-app/ingredient-analyzer/internal/types"
	"github.com/spf13/cobra"
)

// errBlankInput makes blank input exit non-zero with the validation notice
var errBlankInput = errors.New(types.BlankInputMessage)

func newAnalyzeCmd() *cobra.Command {
	var (
		format     string
		simplified bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [ingredients...]",
		Short: "Analyze an ingredients list",
		Long: `Analyze a comma separated ingredients list, e.g.

  ingredient-analyzer analyze "Water, Sugar, Salt"
  echo "Milk, Wheat, Peanuts" | ingredient-analyzer analyze --format json

Arguments are joined with spaces. Without arguments the list is read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			raw := strings.Join(args, " ")
			if len(args) == 0 {
				in, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				raw = string(in)
			}

			analyzer, err := loadAnalyzer()
			if err != nil {
				return err
			}

			report, ok := analyzer.Analyze(raw)
			if !ok {
				return errBlankInput
			}

			view := types.FromReport(report)
			out := cmd.OutOrStdout()
			r := render.New(out)

			switch {
			case f.Resolve(out) == render.FormatText:
				return r.Report(view)
			case simplified:
				return r.JSON(view.ToSimplified())
			default:
				return r.JSON(view)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatAuto), "Output format: auto, text or json (auto picks text on a terminal)")
	cmd.Flags().BoolVar(&simplified, "simplified", false, "Emit only counts, hit lists and scores (JSON output only)")

	return cmd
}

func newTablesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the allergen and additive reference tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			analyzer, err := loadAnalyzer()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tables := types.FromTables(analyzer.Tables())
			if f.Resolve(out) == render.FormatText {
				return render.New(out).Tables(tables)
			}
			return render.New(out).JSON(tables)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatAuto), "Output format: auto, text or json")

	return cmd
}

// loadAnalyzer builds an analyzer over TABLES_PATH or the embedded tables
func loadAnalyzer() (*analysis.Analyzer, error) {
	cfg := config.Load()
	tables, err := reference.LoadOrDefault(cfg.TablesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables: %w", err)
	}
	return analysis.New(tables), nil
}
