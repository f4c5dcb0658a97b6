package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/noot-app/ingredient-analyzer/internal/batch"
	"github.com/noot-app/ingredient-analyzer/internal/types"
	"golang.org/x/term"
)

// Format selects how a report is written
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const (
	defaultWidth = 80
	minWidth     = 40
	maxWidth     = 100
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unknown format %q (want auto, text or json)", s)
	}
}

// Resolve turns FormatAuto into text for terminals and JSON for pipes
func (f Format) Resolve(out io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if isTerminal(out) {
		return FormatText
	}
	return FormatJSON
}

// Renderer writes analysis views to an output stream
type Renderer struct {
	out   io.Writer
	width int
}

// New creates a renderer sized to the terminal behind out, if any
func New(out io.Writer) *Renderer {
	return &Renderer{out: out, width: termWidth(out)}
}

// NewWithWidth creates a renderer with a fixed line width
func NewWithWidth(out io.Writer, width int) *Renderer {
	return &Renderer{out: out, width: clampWidth(width)}
}

// JSON writes v as indented JSON
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Report writes the full text report: overview, ingredients, allergens,
// additives and health impact sections
func (r *Renderer) Report(rep types.AnalysisReport) error {
	w := &errWriter{w: r.out}

	r.heading(w, "Ingredient Analysis Results")

	r.section(w, "Overview")
	w.printf("Nutrition Quality Score  %s %3d%% (%s)\n", r.bar(rep.NutritionScore.Value), rep.NutritionScore.Value, rep.NutritionScore.Band)
	w.printf("  Based on the ratio of natural to processed ingredients\n")
	w.printf("Total Ingredients        %d\n", rep.Summary.TotalIngredients)
	w.printf("Potential Allergens      %d\n", rep.Summary.AllergenCount)
	w.printf("Additives Detected       %d\n", rep.Summary.AdditiveCount)
	if len(rep.Allergens) > 0 {
		w.printf("\nAllergen Alert: This product may contain allergens including %s.\n", strings.Join(rep.Allergens, ", "))
	}

	r.section(w, "Ingredients")
	for _, ing := range rep.Ingredients {
		var badges []string
		if ing.Allergen {
			badges = append(badges, "[Allergen]")
		}
		if ing.Additive {
			badges = append(badges, "[Additive]")
		}
		w.printf("  %-*s %s\n", r.nameWidth(), ing.Name, strings.Join(badges, " "))
	}

	r.section(w, "Allergens")
	if len(rep.Allergens) == 0 {
		w.printf("No common allergens were detected in the ingredients list.\n")
	}
	for _, a := range rep.Allergens {
		w.printf("  ! %s\n", a)
	}
	w.printf("\nNote: %s\n", rep.Disclaimer)

	r.section(w, "Additives")
	if len(rep.Additives) == 0 {
		w.printf("No common additives were detected in the ingredients list.\n")
	}
	for _, a := range rep.Additives {
		w.printf("  %s  [%s, %s concern]\n", a.Ingredient, a.Category, a.Concern)
		w.printf("    %s\n", a.Description)
	}

	r.section(w, "Health Impact")
	w.printf("Health Risk Score        %s %3d%% (%s)\n", r.bar(rep.HealthRiskScore.Value), rep.HealthRiskScore.Value, rep.HealthRiskScore.Band)
	for _, a := range rep.Additives {
		w.printf("\n  %s (%s)\n", a.Ingredient, a.MatchedKey)
		writeField(w, "Short-term", a.ShortTermEffects)
		writeField(w, "Long-term", a.LongTermEffects)
		writeField(w, "Regulatory", a.RegulatoryStatus)
		writeField(w, "Daily limit", a.DailyLimit)
	}

	return w.err
}

// Tables writes the reference tables in table order
func (r *Renderer) Tables(t types.ReferenceTables) error {
	w := &errWriter{w: r.out}

	r.heading(w, "Reference Tables")
	r.section(w, fmt.Sprintf("Allergens (%d)", len(t.Allergens)))
	for _, a := range t.Allergens {
		w.printf("  %s\n", a)
	}

	r.section(w, fmt.Sprintf("Additives (%d, first match wins)", len(t.Additives)))
	for i, a := range t.Additives {
		w.printf("  %2d. %-*s %-22s %s\n", i+1, r.nameWidth(), a.Key, a.Category, a.Concern)
	}
	return w.err
}

func (r *Renderer) heading(w *errWriter, title string) {
	w.printf("%s\n%s\n", title, strings.Repeat("=", r.width))
}

func (r *Renderer) section(w *errWriter, title string) {
	w.printf("\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// bar draws a fixed-width progress bar for a 0-100 value
func (r *Renderer) bar(value int) string {
	size := r.width / 4
	filled := value * size / 100
	filled = max(0, min(size, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", size-filled) + "]"
}

func (r *Renderer) nameWidth() int {
	return r.width * 2 / 5
}

func writeField(w *errWriter, label, value string) {
	if value == "" {
		return
	}
	w.printf("    %-12s %s\n", label+":", value)
}

// errWriter keeps the first write error so callers check once
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width, defaults to 80 if unavailable
func termWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return defaultWidth
	}
	return clampWidth(w)
}

func clampWidth(w int) int {
	if w <= 0 {
		return defaultWidth
	}
	return max(minWidth, min(maxWidth, w))
}

// Batch writes the aggregate of a batch run followed by one line per row
func (r *Renderer) Batch(s *batch.Summary) error {
	w := &errWriter{w: r.out}

	r.heading(w, "Batch Analysis Results")
	w.printf("Rows                     %d\n", s.Rows)
	w.printf("Analyzed                 %d\n", s.Analyzed)
	w.printf("Skipped (blank)          %d\n", s.Skipped)
	w.printf("Rows With Allergens      %d\n", s.RowsWithAllergens)
	w.printf("Mean Nutrition Score     %3d%% (%s)\n", s.MeanNutritionScore, types.NutritionBand(s.MeanNutritionScore))
	w.printf("Mean Health Risk Score   %3d%% (%s)\n", s.MeanHealthRiskScore, types.RiskBand(s.MeanHealthRiskScore))

	r.section(w, "Rows")
	for _, res := range s.Results {
		if res.Skipped {
			w.printf("  %-*s skipped: %s\n", r.nameWidth()/2, res.ID, types.BlankInputMessage)
			continue
		}
		w.printf("  %-*s nutrition %3d%%  risk %3d%%  allergens %d  additives %d\n",
			r.nameWidth()/2, res.ID,
			res.Report.NutritionScore.Value, res.Report.HealthRiskScore.Value,
			len(res.Report.Allergens), len(res.Report.Additives))
	}
	return w.err
}
