package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noot-app/ingredient-analyzer/internal/analysis"
	"github.com/noot-app/ingredient-analyzer/internal/config"
	"github.com/noot-app/ingredient-analyzer/internal/reference"
	"github.com/noot-app/ingredient-analyzer/internal/types"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func newTestServer(t *testing.T, env string) *Server {
	t.Helper()
	cfg := &config.Config{AuthToken: testToken, Port: "0", Environment: env}
	return New(cfg, analysis.Default(), config.NewTestLogger(io.Discard, "debug"))
}

func doRequest(s *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_HandleHealth(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	w := doRequest(s, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Status)
	assert.Empty(t, response.Error)
}

func TestServer_HandleHealth_Unhealthy(t *testing.T) {
	empty, err := reference.NewTables(nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name          string
		env           string
		expectedError string
	}{
		{"production hides details", config.EnvProduction, "health check failed"},
		{"development shows details", config.EnvDevelopment, "health check failed: reference tables are empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{AuthToken: testToken, Environment: tt.env}
			s := New(cfg, analysis.New(empty), config.NewTestLogger(io.Discard, "error"))

			w := doRequest(s, http.MethodGet, "/health", "", "")
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)

			var response HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, "unhealthy", response.Status)
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}
}

func TestServer_Authorization(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{"analyze with valid token", http.MethodPost, "/api/v1/analyze", testToken, http.StatusOK},
		{"analyze without token", http.MethodPost, "/api/v1/analyze", "", http.StatusUnauthorized},
		{"analyze with wrong token", http.MethodPost, "/api/v1/analyze", "wrong-token", http.StatusUnauthorized},
		{"tables with valid token", http.MethodGet, "/api/v1/tables", testToken, http.StatusOK},
		{"tables without token", http.MethodGet, "/api/v1/tables", "", http.StatusUnauthorized},
		{"mcp without token", http.MethodPost, "/mcp", "", http.StatusUnauthorized},
		{"health needs no token", http.MethodGet, "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, tt.method, tt.path, tt.token, `{"ingredients": "water"}`)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestServer_HandleAnalyze(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	w := doRequest(s, http.MethodPost, "/api/v1/analyze", testToken, `{"ingredients": "Water, Sugar, Salt, Milk, Red 40"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 5, report.Summary.TotalIngredients)
	assert.Equal(t, []string{"milk"}, report.Allergens)
	assert.Equal(t, types.Score{Value: 40, Band: types.BandLow}, report.NutritionScore)
	assert.Equal(t, types.Score{Value: 43, Band: types.BandModerate}, report.HealthRiskScore)
	require.Len(t, report.Additives, 3)
	assert.Equal(t, "red 40", report.Additives[2].MatchedKey)
	assert.Equal(t, types.AllergenDisclaimer, report.Disclaimer)
}

func TestServer_HandleAnalyze_Simplified(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	w := doRequest(s, http.MethodPost, "/api/v1/analyze", testToken, `{"ingredients": "Wine, Water, Eggs", "simplified": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var report types.SimplifiedReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, []string{"eggs"}, report.Allergens)
	assert.Equal(t, []string{"wine"}, report.Additives)
	assert.Equal(t, types.Score{Value: 100, Band: types.BandHigh}, report.HealthRiskScore)
}

func TestServer_HandleAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		body          string
		expectedError string
	}{
		{"blank ingredients", config.EnvProduction, `{"ingredients": "   "}`, types.BlankInputMessage},
		{"missing ingredients", config.EnvProduction, `{}`, types.BlankInputMessage},
		{"malformed json in production", config.EnvProduction, `{"ingredients":`, "invalid request body"},
		{"wrong type in production", config.EnvProduction, `{"ingredients": 42}`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.env)

			w := doRequest(s, http.MethodPost, "/api/v1/analyze", testToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}

	t.Run("development mode includes details", func(t *testing.T) {
		s := newTestServer(t, config.EnvDevelopment)

		w := doRequest(s, http.MethodPost, "/api/v1/analyze", testToken, `{"ingredients":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, strings.HasPrefix(response.Error, "invalid request body: "))
	})

	t.Run("oversized body", func(t *testing.T) {
		s := newTestServer(t, config.EnvProduction)

		body := `{"ingredients": "` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`
		w := doRequest(s, http.MethodPost, "/api/v1/analyze", testToken, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_HandleTables(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	w := doRequest(s, http.MethodGet, "/api/v1/tables", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var tables types.ReferenceTables
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	assert.Len(t, tables.Allergens, 16)
	assert.Equal(t, "sugar", tables.Additives[0].Key)
}

func TestServer_RequestID(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	w := doRequest(s, http.MethodGet, "/health", "", "")
	id := w.Header().Get(RequestIDHeader)
	_, err := ulid.ParseStrict(id)
	assert.NoError(t, err, "generated request id should be a ULID")

	existing := ulid.Make().String()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, existing)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, existing, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-ulid")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-ulid", w.Header().Get(RequestIDHeader))
}

func TestServer_MCPInitialize(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ingredient Analyzer")
}

func TestServerInitializer_Initialize(t *testing.T) {
	logger := config.NewTestLogger(io.Discard, "error")
	ctx := context.Background()

	t.Run("embedded tables", func(t *testing.T) {
		analyzer, err := NewServerInitializer(&config.Config{}, logger).Initialize(ctx)
		require.NoError(t, err)
		assert.Same(t, reference.Default(), analyzer.Tables())
	})

	t.Run("tables from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		content := "allergens: [sesame]\nadditives:\n  - key: carrageenan\n    description: thickener\n    category: thickener\n    concern: moderate\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		analyzer, err := NewServerInitializer(&config.Config{TablesPath: path, Environment: config.EnvDevelopment}, logger).Initialize(ctx)
		require.NoError(t, err)
		assert.True(t, analyzer.IsAllergen("toasted sesame"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewServerInitializer(&config.Config{TablesPath: "/nonexistent/tables.yaml"}, logger).Initialize(ctx)
		assert.Error(t, err)
	})

	t.Run("empty tables fail the health check", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		require.NoError(t, os.WriteFile(path, []byte("allergens: []\nadditives: []\n"), 0644))

		_, err := NewServerInitializer(&config.Config{TablesPath: path}, logger).Initialize(ctx)
		assert.Error(t, err)
	})
}

func TestServer_Start_StopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
