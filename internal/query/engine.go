package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Engine reads ingredient rows from local files with an in-memory DuckDB
type Engine struct {
	db  *sql.DB
	log *slog.Logger
}

// Ensure Engine implements QueryEngine interface
var _ QueryEngine = (*Engine)(nil)

// NewEngine creates a new query engine
func NewEngine(logger *slog.Logger) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	return &Engine{
		db:  db,
		log: logger,
	}, nil
}

// Close closes the database connection
func (e *Engine) Close() error {
	return e.db.Close()
}

// ReadIngredients reads (id, ingredients) pairs from src in file order
func (e *Engine) ReadIngredients(ctx context.Context, src Source) ([]Row, error) {
	start := time.Now()
	e.log.Debug("ReadIngredients starting", "path", src.Path, "column", src.Column, "id_column", src.IDColumn, "limit", src.Limit)

	query, args, err := buildQuery(src)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		e.log.Error("DuckDB query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	results := []Row{}
	for rows.Next() {
		var id, ingredients sql.NullString
		if err := rows.Scan(&id, &ingredients); err != nil {
			e.log.Error("Row scan failed", "error", err)
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		// Handle nullable fields
		var r Row
		if id.Valid {
			r.ID = id.String
		}
		if ingredients.Valid {
			r.Ingredients = ingredients.String
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		e.log.Error("Rows iteration failed", "error", err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	e.log.Info("ReadIngredients completed", "count", len(results), "duration", time.Since(start))
	return results, nil
}

// TestConnection checks that the embedded database answers queries
func (e *Engine) TestConnection(ctx context.Context) error {
	start := time.Now()
	e.log.Debug("Testing DuckDB connection")

	var one int
	if err := e.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		e.log.Error("Connection test failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("connection test failed: %w", err)
	}

	e.log.Debug("Connection test successful", "duration", time.Since(start))
	return nil
}

// buildQuery renders the SELECT for src. Identifiers are quoted, the path and
// limit are bound.
func buildQuery(src Source) (string, []interface{}, error) {
	if strings.TrimSpace(src.Path) == "" {
		return "", nil, errors.New("source path is required")
	}
	if strings.TrimSpace(src.Column) == "" {
		return "", nil, errors.New("ingredients column is required")
	}
	if src.Limit < 0 {
		return "", nil, fmt.Errorf("limit must not be negative, got %d", src.Limit)
	}

	reader, err := readerFor(src.Path)
	if err != nil {
		return "", nil, err
	}

	idExpr := "CAST(row_number() OVER () AS VARCHAR)"
	if src.IDColumn != "" {
		idExpr = "CAST(" + quoteIdent(src.IDColumn) + " AS VARCHAR)"
	}

	query := fmt.Sprintf(`
		SELECT %s, CAST(%s AS VARCHAR)
		FROM %s(?)`, idExpr, quoteIdent(src.Column), reader)
	args := []interface{}{src.Path}

	if src.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, src.Limit)
	}

	return query, args, nil
}

// readerFor picks the DuckDB table function for a file extension
func readerFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return "read_csv_auto", nil
	case ".parquet":
		return "read_parquet", nil
	case ".json", ".jsonl", ".ndjson":
		return "read_json_auto", nil
	default:
		return "", fmt.Errorf("unsupported source file %q: want csv, tsv, parquet or json", filepath.Base(path))
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
