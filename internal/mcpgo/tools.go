package mcpgo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/noot-app/ingredient-analyzer/internal/types"
)

// AnalyzeIngredientsResponse is the structured output of analyze_ingredients.
// Exactly one of Report and Simplified is set.
type AnalyzeIngredientsResponse struct {
	Report     *types.AnalysisReport   `json:"report,omitempty"`
	Simplified *types.SimplifiedReport `json:"simplified,omitempty"`
}

// ClassifyIngredientResponse is the structured output of classify_ingredient
type ClassifyIngredientResponse struct {
	Ingredient string                `json:"ingredient"`
	Allergen   bool                  `json:"allergen"`
	Additive   *types.AdditiveDetail `json:"additive,omitempty"`
}

func (s *Server) addTools() {
	analyzeTool := mcp.NewTool("analyze_ingredients",
		mcp.WithDescription("Analyze a food label ingredients list. Flags allergens and additives and scores nutrition quality and health risk (0-100). Ingredients must be comma separated, e.g. \"Water, Sugar, Salt\"."),
		mcp.WithString("ingredients",
			mcp.Required(),
			mcp.Description("Comma separated ingredients list as printed on the label"),
		),
		mcp.WithBoolean("simplified",
			mcp.Description("Return only the counts, hit lists and scores (default: false)"),
			mcp.DefaultBool(false),
		),
		mcp.WithOutputSchema[AnalyzeIngredientsResponse](),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyzeIngredients)

	classifyTool := mcp.NewTool("classify_ingredient",
		mcp.WithDescription("Classify a single ingredient as allergen and/or additive, returning the matched additive record if any"),
		mcp.WithString("ingredient",
			mcp.Required(),
			mcp.Description("A single ingredient, e.g. \"modified corn starch\""),
		),
		mcp.WithOutputSchema[ClassifyIngredientResponse](),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcpServer.AddTool(classifyTool, s.handleClassifyIngredient)

	tablesTool := mcp.NewTool("list_reference_tables",
		mcp.WithDescription("List the allergen names and additive records used for classification, in matching order"),
		mcp.WithOutputSchema[types.ReferenceTables](),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcpServer.AddTool(tablesTool, s.handleListReferenceTables)
}

func (s *Server) handleAnalyzeIngredients(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.log.Debug("handleAnalyzeIngredients: Starting tool call",
		"arguments", request.GetArguments())

	ingredients, err := request.RequireString("ingredients")
	if err != nil {
		s.log.Warn("handleAnalyzeIngredients: Missing 'ingredients' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'ingredients': %v", err)), nil
	}
	simplified := request.GetBool("simplified", false)

	report, ok := s.analyzer.Analyze(ingredients)
	if !ok {
		return mcp.NewToolResultError(types.BlankInputMessage), nil
	}

	view := types.FromReport(report)
	var response AnalyzeIngredientsResponse
	if simplified {
		sr := view.ToSimplified()
		response.Simplified = &sr
	} else {
		response.Report = &view
	}

	s.log.Debug("handleAnalyzeIngredients: Returning structured result",
		"ingredients", view.Summary.TotalIngredients,
		"allergens", view.Summary.AllergenCount,
		"additives", view.Summary.AdditiveCount,
		"simplified", simplified)

	return s.structured(response)
}

func (s *Server) handleClassifyIngredient(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ingredient, err := request.RequireString("ingredient")
	if err != nil {
		s.log.Warn("handleClassifyIngredient: Missing 'ingredient' parameter", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Missing required parameter 'ingredient': %v", err)), nil
	}

	token := strings.ToLower(strings.TrimSpace(ingredient))
	if token == "" {
		return mcp.NewToolResultError(types.BlankInputMessage), nil
	}

	c := s.analyzer.Classify(token)
	response := ClassifyIngredientResponse{
		Ingredient: c.Token,
		Allergen:   c.Allergen,
	}
	if c.Additive != nil {
		detail := types.NewAdditiveDetail(c.Token, c.Additive)
		response.Additive = &detail
	}

	s.log.Debug("handleClassifyIngredient: Returning structured result",
		"ingredient", token,
		"allergen", response.Allergen,
		"additive", response.Additive != nil)

	return s.structured(response)
}

func (s *Server) handleListReferenceTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.structured(types.FromTables(s.analyzer.Tables()))
}

// structured returns both structured content and a JSON text fallback for
// clients without structured output support
func (s *Server) structured(response interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		s.log.Error("Failed to marshal tool response", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultStructured(response, string(responseJSON)), nil
}
