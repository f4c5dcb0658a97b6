package query

import (
	"context"
	"log/slog"
	"strconv"
)

// MockEngine is a mock implementation for testing
type MockEngine struct {
	rows []Row
	err  error
	log  *slog.Logger
}

// NewMockEngine creates a new mock engine for testing
func NewMockEngine(logger *slog.Logger) *MockEngine {
	return &MockEngine{
		log: logger,
		rows: []Row{
			{ID: "3017620422003", Ingredients: "Sugar, Palm Oil, Hazelnuts, Cocoa, Skimmed Milk Powder, Soy Lecithin"},
			{ID: "5449000000996", Ingredients: "Carbonated Water, Sugar, Caramel Color, Phosphoric Acid, Natural Flavors, Caffeine"},
			{ID: "0000000000000", Ingredients: "  "},
			{ID: "7622210449283", Ingredients: "Wheat Flour, Sugar, Salt, Sodium Benzoate"},
		},
	}
}

// ReadIngredients returns the configured rows, honoring the limit
func (m *MockEngine) ReadIngredients(ctx context.Context, src Source) ([]Row, error) {
	if m.err != nil {
		return nil, m.err
	}

	results := []Row{}
	for i, r := range m.rows {
		if src.Limit > 0 && len(results) >= src.Limit {
			break
		}
		if src.IDColumn == "" {
			r.ID = strconv.Itoa(i + 1)
		}
		results = append(results, r)
	}
	m.log.Debug("MockEngine returned rows", "count", len(results))
	return results, nil
}

// TestConnection tests the connection (always succeeds for mock)
func (m *MockEngine) TestConnection(ctx context.Context) error {
	return m.err
}

// Close closes the mock engine (no-op)
func (m *MockEngine) Close() error {
	return nil
}

// SetError sets an error to be returned by the mock
func (m *MockEngine) SetError(err error) {
	m.err = err
}

// SetRows sets the rows to be returned by the mock
func (m *MockEngine) SetRows(rows []Row) {
	m.rows = rows
}
