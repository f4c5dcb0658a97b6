package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/auth"
	"github.com/noot-app/ingredient-analyzer/internal/config"
	"github.com/noot-app/ingredient-analyzer/internal/mcpgo"
	"github.com/noot-app/ingredient-analyzer/internal/types"
	"github.com/noot-app/ingredient-analyzer/internal/version"
)

// AnalyzeRequest is the JSON body of POST /api/v1/analyze
type AnalyzeRequest struct {
	Ingredients string `json:"ingredients"`
	Simplified  bool   `json:"simplified"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server hosts the REST API and the MCP endpoint on one gin router
type Server struct {
	config   *config.Config
	analyzer *analysis.Analyzer
	mcp      *mcpgo.Server
	auth     *auth.BearerTokenAuth
	log      *slog.Logger
	router   *gin.Engine
}

// New creates a new server instance with its routes registered
func New(cfg *config.Config, analyzer *analysis.Analyzer, logger *slog.Logger) *Server {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:   cfg,
		analyzer: analyzer,
		mcp:      mcpgo.NewServer(analyzer, logger),
		auth:     auth.NewBearerTokenAuth(cfg.AuthToken),
		log:      logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(newRequestIDs()), recovery(s.log), accessLog(s.log))

	// Health endpoint (no auth required)
	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	api.Use(s.auth.Middleware())
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/tables", s.handleTables)
	}

	r.Any("/mcp", s.auth.Middleware(), gin.WrapH(s.mcp.Handler()))

	return r
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until SIGINT, SIGTERM or ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  HTTPReadTimeout,
		WriteTimeout: HTTPWriteTimeout,
		IdleTimeout:  HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", server.Addr, "version", version.Tag())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", "error", err)
		return fmt.Errorf("shutdown failed: %w", err)
	}

	s.log.Info("Server stopped")
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.mcp.CheckHealth(c.Request.Context()); err != nil {
		s.log.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  "unhealthy",
			Version: version.Tag(),
			Error:   s.errorMessage(err, "health check failed"),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: version.Tag()})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodyBytes)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.log.Warn("Bad request", "error", err, "request_id", c.GetString(RequestIDHeader))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: s.errorMessage(err, "invalid request body")})
		return
	}

	report, ok := s.analyzer.Analyze(req.Ingredients)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: types.BlankInputMessage})
		return
	}

	view := types.FromReport(report)
	s.log.Debug("Analysis completed",
		"request_id", c.GetString(RequestIDHeader),
		"ingredients", view.Summary.TotalIngredients,
		"nutrition_score", view.NutritionScore.Value,
		"health_risk_score", view.HealthRiskScore.Value)

	if req.Simplified {
		c.JSON(http.StatusOK, view.ToSimplified())
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleTables(c *gin.Context) {
	c.JSON(http.StatusOK, types.FromTables(s.analyzer.Tables()))
}

// errorMessage returns the detailed error in development mode and the generic message otherwise
func (s *Server) errorMessage(err error, message string) string {
	if s.config.IsDevelopment() {
		return fmt.Sprintf("%s: %v", message, err)
	}
	return message
}
