package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/config"
	"github.com/noot-app/ingredient-analyzer/internal/reference"
)

// ServerInitializer handles the startup steps shared by the HTTP and stdio modes
type ServerInitializer struct {
	config *config.Config
	log    *slog.Logger
}

// NewServerInitializer creates a new server initializer
func NewServerInitializer(cfg *config.Config, logger *slog.Logger) *ServerInitializer {
	return &ServerInitializer{
		config: cfg,
		log:    logger,
	}
}

// Initialize loads the reference tables and returns a healthy analyzer
func (si *ServerInitializer) Initialize(ctx context.Context) (*analysis.Analyzer, error) {
	start := time.Now()
	si.log.Info("Initializing server...")

	if si.config.IsDevelopment() {
		si.log.Warn("🚧 DEVELOPMENT MODE ENABLED 🚧",
			"environment", si.config.Environment,
			"note", "Detailed error messages will be returned to clients")
	}

	tables, err := reference.LoadOrDefault(si.config.TablesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables: %w", err)
	}

	source := si.config.TablesPath
	if source == "" {
		source = "embedded"
	}
	si.log.Info("Reference tables loaded",
		"source", source,
		"allergens", tables.Allergens.Len(),
		"additives", tables.Additives.Len())

	analyzer := analysis.New(tables)
	if err := analyzer.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("analyzer health check failed: %w", err)
	}

	si.log.Info("Server initialized successfully", "duration", time.Since(start))
	return analyzer, nil
}
