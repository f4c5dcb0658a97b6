package query

import (
	"context"
	"log/slog"
	"os"
)

// QueryEngine reads ingredient rows from a tabular source
type QueryEngine interface {
	ReadIngredients(ctx context.Context, src Source) ([]Row, error)
	TestConnection(ctx context.Context) error
	Close() error
}

// Source describes where to read ingredient text from
type Source struct {
	// Path is a local .csv, .tsv, .parquet, .json or .jsonl file
	Path string
	// Column holds the raw ingredients text
	Column string
	// IDColumn identifies each row; the row number is used when empty
	IDColumn string
	// Limit caps the number of rows read; 0 means no limit
	Limit int
}

// Row is one label read from a source
type Row struct {
	ID          string `json:"id"`
	Ingredients string `json:"ingredients"`
}

// NewQueryEngine creates a new query engine
// Uses mock engine if QUERY_ENGINE_MOCK environment variable is set
func NewQueryEngine(logger *slog.Logger) (QueryEngine, error) {
	if os.Getenv("QUERY_ENGINE_MOCK") == "true" {
		return NewMockEngine(logger), nil
	}
	return NewEngine(logger)
}
