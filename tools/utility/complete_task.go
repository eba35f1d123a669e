// Package utility provides the small set of infrastructure tools every
// worker needs regardless of domain: the completion signal every planner
// loop terminates on, plus two sample tools (calculator, mock_search) for
// exercising schema validation and HITL gating without a real domain tool.
package utility

import (
	"context"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
)

var completeTaskSchema = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":      map[string]any{"type": "string", "description": "Brief summary of what was accomplished"},
		"final_result": map[string]any{"type": "string", "description": "The final result to return to the user"},
	},
	"required": []any{"summary", "final_result"},
})

// CompleteTaskTool is the built-in terminal tool referenced throughout the
// worker loop: a planner calls it to signal the
// current task is done and hand back its result.
type CompleteTaskTool struct{}

func (CompleteTaskTool) Name() string             { return agent.CompleteTaskTool }
func (CompleteTaskTool) Description() string {
	return "Call this when the task is complete to return results to the user and stop execution."
}
func (CompleteTaskTool) ArgsSchema() *tools.Schema { return completeTaskSchema }

func (CompleteTaskTool) Execute(_ context.Context, args map[string]any) (any, error) {
	summary, _ := args["summary"].(string)
	finalResult, _ := args["final_result"].(string)
	humanSummary := summary
	if humanSummary == "" {
		humanSummary = finalResult
	}
	payloadMessage := finalResult
	if payloadMessage == "" {
		payloadMessage = summary
	}
	return map[string]any{
		"completed":              true,
		"summary":                summary,
		"final_result":           finalResult,
		"operation":              string(agent.OpDisplayMessage),
		"payload":                map[string]any{"message": payloadMessage},
		"human_readable_summary": humanSummary,
	}, nil
}

func mustSchema(document map[string]any) *tools.Schema {
	schema, err := tools.NewSchema(document)
	if err != nil {
		panic(err)
	}
	return schema
}
