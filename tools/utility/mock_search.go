package utility

import (
	"context"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
)

var mockSearchSchema = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query":  map[string]any{"type": "string", "description": "The search query to look up"},
		"region": map[string]any{"type": "string", "description": "Locale/region for the mock search"},
	},
	"required": []any{"query"},
})

// MockSearchTool returns a canned response for any query, a stand-in for a
// real search tool used to demo delegation and HITL gating without an
// external dependency.
type MockSearchTool struct{}

func (MockSearchTool) Name() string             { return "mock_search" }
func (MockSearchTool) Description() string      { return "Returns a canned response for a given query." }
func (MockSearchTool) ArgsSchema() *tools.Schema { return mockSearchSchema }

func (MockSearchTool) Execute(_ context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	region, _ := args["region"].(string)
	if region == "" {
		region = "us-en"
	}
	return map[string]any{
		"summary": "Mock search result: AI Agents are modular frameworks.",
		"query":   query,
		"region":  region,
	}, nil
}
