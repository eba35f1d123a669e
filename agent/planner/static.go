package planner

import (
	"context"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// StaticPlanner is a deterministic planner useful for exercising the
// execution loop without an LLM: it routes tasks containing any of its
// keywords to mock_search and returns a canned FinalResponse otherwise.
type StaticPlanner struct {
	Keywords []string
}

// NewStaticPlanner builds a StaticPlanner. A nil or empty keywords list
// defaults to {"search", "find"}.
func NewStaticPlanner(keywords []string) *StaticPlanner {
	if len(keywords) == 0 {
		keywords = []string{"search", "find"}
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return &StaticPlanner{Keywords: lowered}
}

func (p *StaticPlanner) Plan(_ context.Context, task string, _ []agent.Message) (agent.PlanOutcome, error) {
	lower := strings.ToLower(task)
	for _, k := range p.Keywords {
		if strings.Contains(lower, k) {
			return singleAction(agent.Action{
				ToolName: "mock_search",
				ToolArgs: map[string]any{"query": task},
			}), nil
		}
	}
	return finalOutcome(agent.FinalResponse{
		Operation:            agent.OpDisplayMessage,
		Payload:              map[string]any{"message": "No action needed. Task handled by planner."},
		HumanReadableSummary: "No action needed. Task handled by planner.",
	}), nil
}

// SingleActionPlanner always returns the same configured Action regardless
// of task or history. Useful for driving a specific tool deterministically
// without any LLM involvement; pair the returned action's tool with
// terminal_tools upstream if the caller should stop after one execution.
type SingleActionPlanner struct {
	ToolName string
	ToolArgs map[string]any
}

func NewSingleActionPlanner(toolName string, toolArgs map[string]any) *SingleActionPlanner {
	return &SingleActionPlanner{ToolName: toolName, ToolArgs: toolArgs}
}

func (p *SingleActionPlanner) Plan(_ context.Context, _ string, _ []agent.Message) (agent.PlanOutcome, error) {
	return singleAction(agent.Action{ToolName: p.ToolName, ToolArgs: p.ToolArgs}), nil
}
