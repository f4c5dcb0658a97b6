package cmd

import (
	"context"

	"github.com/noot-app/ingredient-analyzer/internal/config"
	"github.com/noot-app/ingredient-analyzer/internal/mcpgo"
	"github.com/noot-app/ingredient-analyzer/internal/server"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Tests build a fresh tree per case.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ingredient-analyzer",
		Short: "Food label ingredient analyzer",
		Long: `Ingredient Analyzer reads the ingredients list printed on a food label and
reports potential allergens, known additives, a nutrition quality score and a
health risk score.

The analyzer operates in these modes:

1. HTTP Mode (default): REST API and remote MCP endpoint
   - POST /api/v1/analyze, GET /api/v1/tables and /mcp
   - Requires Bearer token authentication (except /health)

2. STDIO Mode (--stdio): For local MCP clients such as Claude Desktop
   - Uses stdio pipes for communication
   - No authentication required

3. CLI subcommands: analyze, batch, tables and version

Available MCP Tools:
- analyze_ingredients: Analyze a comma separated ingredients list
- classify_ingredient: Classify a single ingredient
- list_reference_tables: List the allergen and additive tables

Authentication (HTTP Mode Only):
Use the AUTH_TOKEN environment variable to set the token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdio, _ := cmd.Flags().GetBool("stdio")
			if stdio {
				return runStdioMode(cmd.Context())
			}
			return runHTTPMode(cmd.Context())
		},
	}

	rootCmd.Flags().Bool("stdio", false, "Run in stdio mode for local MCP clients (default: HTTP mode for remote deployment)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newBatchCmd(),
		newTablesCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// runStdioMode serves the MCP tools over stdio
func runStdioMode(ctx context.Context) error {
	// stdout carries MCP frames, so logs go to stderr
	logger := config.NewLogger(true)
	cfg := config.Load()

	logger.Info("🔌 Starting Ingredient Analyzer in STDIO mode",
		"mode", "stdio",
		"auth", "not required for stdio mode",
		"transport", "stdio pipes")

	analyzer, err := server.NewServerInitializer(cfg, logger).Initialize(ctx)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		return err
	}

	return mcpgo.NewServer(analyzer, logger).ServeStdio()
}

// runHTTPMode serves the REST API and MCP endpoint over HTTP
func runHTTPMode(ctx context.Context) error {
	logger := config.NewLogger(false)
	cfg := config.Load()

	logger.Info("🌐 Starting Ingredient Analyzer in HTTP mode",
		"mode", "http",
		"auth", "Bearer token required (except /health endpoint)",
		"port", cfg.Port)

	analyzer, err := server.NewServerInitializer(cfg, logger).Initialize(ctx)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		return err
	}

	return server.New(cfg, analyzer, logger).Start(ctx)
}

// Execute runs the command tree against os.Args
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// Run is the main entry point for the CLI application
func Run() error {
	return Execute(context.Background())
}
