package mcpgo

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/version"
)

const healthCacheDuration = 10 * time.Second

// HealthChecker reports whether the analyzer can serve requests
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server exposes the ingredient analyzer as MCP tools using the mark3labs SDK
type Server struct {
	mcpServer *server.MCPServer
	analyzer  *analysis.Analyzer
	health    HealthChecker
	log       *slog.Logger

	// Health check caching to prevent DOS attacks
	healthMu        sync.RWMutex
	lastHealthCheck time.Time
	lastHealthError error
}

// NewServer creates a new MCP server with the analysis tools registered
func NewServer(analyzer *analysis.Analyzer, logger *slog.Logger) *Server {
	mcpServer := server.NewMCPServer(
		"Ingredient Analyzer",
		version.Tag(),
		server.WithToolCapabilities(false), // Tools don't change dynamically
		server.WithRecovery(),              // Recover from panics
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		analyzer:  analyzer,
		health:    analyzer,
		log:       logger,
	}

	s.addTools()

	return s
}

// CheckHealth runs the health check at most once per 10 seconds and
// returns the cached result in between
func (s *Server) CheckHealth(ctx context.Context) error {
	s.healthMu.RLock()
	if time.Since(s.lastHealthCheck) < healthCacheDuration {
		err := s.lastHealthError
		s.healthMu.RUnlock()
		s.log.Debug("Health check: using cached result",
			"cached_error", err != nil,
			"cache_age", time.Since(s.lastHealthCheck))
		return err
	}
	s.healthMu.RUnlock()

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	// Another goroutine may have refreshed the cache while we waited
	if time.Since(s.lastHealthCheck) < healthCacheDuration {
		return s.lastHealthError
	}

	s.log.Debug("Health check: checking reference tables")
	err := s.health.HealthCheck(ctx)
	s.lastHealthCheck = time.Now()
	s.lastHealthError = err

	return err
}

// Handler returns the stateless streamable HTTP transport mounted at /mcp.
// Authentication is left to the caller.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true), // Stateless for better OpenAI compatibility
	)
}

// ServeStdio serves the MCP server over stdio (no auth required for local use)
func (s *Server) ServeStdio() error {
	s.log.Info("Starting MCP server in stdio mode")
	return server.ServeStdio(s.mcpServer)
}
