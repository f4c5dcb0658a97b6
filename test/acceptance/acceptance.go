package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Point these at a running server:
//
//	AUTH_TOKEN=your-secret-token go run .
var (
	serverURL = envOr("SERVER_URL", "http://localhost:8080")
	authToken = envOr("AUTH_TOKEN", "super-secret-token")
	client    = &http.Client{Timeout: 5 * time.Second}
)

type MCPRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type CallToolParams struct {
	Name      string      `json:"name"`
	Arguments interface{} `json:"arguments,omitempty"`
}

type score struct {
	Value int    `json:"value"`
	Band  string `json:"band"`
}

type analysisReport struct {
	Summary struct {
		TotalIngredients int `json:"total_ingredients"`
	} `json:"summary"`
	Allergens       []string `json:"allergens"`
	NutritionScore  score    `json:"nutrition_score"`
	HealthRiskScore score    `json:"health_risk_score"`
}

// labelCase is a label with its expected scores
type labelCase struct {
	Ingredients string
	Nutrition   int
	Risk        int
}

var labelCases = []labelCase{
	{"Water, Sugar, Salt", 33, 35},
	{"Milk, Wheat, Peanuts", 100, 0},
	{"Wine, Water", 50, 100},
	{"milk, salt, milk", 67, 20},
}

func main() {
	fmt.Printf("🧪 Ingredient Analyzer Acceptance Test\n")
	fmt.Printf("Target: %s\n\n", serverURL)

	steps := []struct {
		name string
		run  func() error
	}{
		{"health endpoint (no auth)", testHealth},
		{"REST API rejects missing and wrong tokens", testAPIAuth},
		{"REST analyze returns expected scores", testAnalyze},
		{"REST analyze rejects blank input", testBlankInput},
		{"MCP endpoint rejects missing and wrong tokens", testMCPAuth},
		{"MCP initialize with correct token", testMCPInitialize},
		{"MCP analyze_ingredients tool call", testMCPToolCall},
		{"concurrent load", testPerformanceUnderLoad},
	}

	for i, step := range steps {
		fmt.Printf("%d. Testing %s...\n", i+1, step.name)
		if err := step.run(); err != nil {
			fmt.Printf("❌ %s failed: %v\n", step.name, err)
			os.Exit(1)
		}
		fmt.Printf("✅ passed\n\n")
	}

	fmt.Printf("🎉 All acceptance tests passed!\n")
}

func testHealth() error {
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		return fmt.Errorf("missing X-Request-ID header")
	}
	return nil
}

func testAPIAuth() error {
	for _, token := range []string{"", "wrong-api-key"} {
		status, _, err := post("/api/v1/analyze", token, map[string]string{"ingredients": "water"})
		if err != nil {
			return err
		}
		if status != http.StatusUnauthorized {
			return fmt.Errorf("token %q: expected 401, got %d", token, status)
		}
	}
	return nil
}

func testAnalyze() error {
	for _, tc := range labelCases {
		status, body, err := post("/api/v1/analyze", authToken, map[string]string{"ingredients": tc.Ingredients})
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("%q: expected 200, got %d: %s", tc.Ingredients, status, body)
		}

		var report analysisReport
		if err := json.Unmarshal(body, &report); err != nil {
			return fmt.Errorf("%q: failed to parse report: %w", tc.Ingredients, err)
		}
		if report.NutritionScore.Value != tc.Nutrition || report.HealthRiskScore.Value != tc.Risk {
			return fmt.Errorf("%q: expected scores %d/%d, got %d/%d", tc.Ingredients,
				tc.Nutrition, tc.Risk, report.NutritionScore.Value, report.HealthRiskScore.Value)
		}
		fmt.Printf("    ✓ %-24s nutrition %3d  risk %3d\n", tc.Ingredients, tc.Nutrition, tc.Risk)
	}
	return nil
}

func testBlankInput() error {
	status, body, err := post("/api/v1/analyze", authToken, map[string]string{"ingredients": "   "})
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest {
		return fmt.Errorf("expected 400, got %d", status)
	}
	if !strings.Contains(string(body), "Please enter ingredients to analyze") {
		return fmt.Errorf("unexpected error body: %s", body)
	}
	return nil
}

func testMCPAuth() error {
	for _, token := range []string{"", "wrong-api-key"} {
		status, _, err := post("/mcp", token, initializeRequest())
		if err != nil {
			return err
		}
		if status != http.StatusUnauthorized {
			return fmt.Errorf("token %q: expected 401, got %d", token, status)
		}
	}
	return nil
}

func testMCPInitialize() error {
	status, body, err := post("/mcp", authToken, initializeRequest())
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d: %s", status, body)
	}
	if !strings.Contains(string(body), "serverInfo") {
		return fmt.Errorf("response doesn't contain expected MCP initialize result")
	}
	return nil
}

func testMCPToolCall() error {
	req := MCPRequest{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "tools/call",
		Params: CallToolParams{
			Name:      "analyze_ingredients",
			Arguments: map[string]interface{}{"ingredients": "Water, Sugar, Salt", "simplified": true},
		},
	}

	status, body, err := post("/mcp", authToken, req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d: %s", status, body)
	}

	var mcpResponse struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &mcpResponse); err != nil {
		return fmt.Errorf("failed to parse MCP response JSON: %w", err)
	}
	if mcpResponse.Result.IsError || len(mcpResponse.Result.Content) == 0 {
		return fmt.Errorf("tool call returned an error or no content: %s", body)
	}

	var payload struct {
		Simplified struct {
			NutritionScore score `json:"nutrition_score"`
		} `json:"simplified"`
	}
	if err := json.Unmarshal([]byte(mcpResponse.Result.Content[0].Text), &payload); err != nil {
		return fmt.Errorf("failed to parse tool text: %w", err)
	}
	if payload.Simplified.NutritionScore.Value != 33 {
		return fmt.Errorf("expected nutrition score 33, got %d", payload.Simplified.NutritionScore.Value)
	}
	return nil
}

func testPerformanceUnderLoad() error {
	const workers, perWorker = 10, 20

	var (
		mu        sync.Mutex
		durations []time.Duration
		failures  []string
		wg        sync.WaitGroup
	)

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tc := labelCases[(w+i)%len(labelCases)]
				t0 := time.Now()
				status, _, err := post("/api/v1/analyze", authToken, map[string]string{"ingredients": tc.Ingredients})
				d := time.Since(t0)

				mu.Lock()
				durations = append(durations, d)
				if err != nil || status != http.StatusOK {
					failures = append(failures, fmt.Sprintf("status=%d err=%v", status, err))
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	p95 := durations[len(durations)*95/100]
	fmt.Printf("    %d requests in %v (p95 %v, %d failures)\n", len(durations), total, p95, len(failures))

	if len(failures) > 0 {
		return fmt.Errorf("%d requests failed, first: %s", len(failures), failures[0])
	}
	if p95 > 500*time.Millisecond {
		return fmt.Errorf("p95 latency %v exceeds 500ms", p95)
	}
	return nil
}

func initializeRequest() MCPRequest {
	return MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params: map[string]interface{}{
			"protocolVersion": "2025-06-18",
			"capabilities":    map[string]interface{}{},
			"clientInfo":      map[string]string{"name": "acceptance", "version": "1.0.0"},
		},
	}
}

// post sends v as JSON and returns the status and body
func post(path, token string, v interface{}) (int, []byte, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
