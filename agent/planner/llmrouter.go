package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/model"
)

// ToolSpec describes one tool an LLMRouterPlanner is allowed to route to.
type ToolSpec struct {
	Tool string
	Args []string
}

// LLMRouterPlanner asks an LLM to map a natural-language task onto a single
// tool call, expecting a JSON object shaped {"tool": "...", "args": {...}}.
type LLMRouterPlanner struct {
	Client       model.Client
	Model        string
	ToolSpecs    []ToolSpec
	SystemPrompt string
}

// NewLLMRouterPlanner builds an LLMRouterPlanner with a default system
// prompt when none is supplied.
func NewLLMRouterPlanner(client model.Client, modelID string, specs []ToolSpec) *LLMRouterPlanner {
	return &LLMRouterPlanner{
		Client:    client,
		Model:     modelID,
		ToolSpecs: specs,
		SystemPrompt: "You are a router that returns a strict JSON object with " +
			"fields 'tool' and 'args'.",
	}
}

func (p *LLMRouterPlanner) Plan(ctx context.Context, task string, _ []agent.Message) (agent.PlanOutcome, error) {
	prompt := p.buildPrompt(task)
	resp, err := p.Client.Complete(ctx, model.Request{
		Model:    p.Model,
		Messages: []model.Message{{Role: model.RoleUser, Content: prompt}},
	})
	if err != nil {
		return agent.PlanOutcome{}, fmt.Errorf("planner: llm router: %w", err)
	}

	jsonStr, ok := extractJSON(resp.Text)
	if !ok {
		return finalOutcome(unableToRoute()), nil
	}
	var decision struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &decision); err != nil || decision.Tool == "" {
		return finalOutcome(unableToRoute()), nil
	}
	if decision.Args == nil {
		decision.Args = map[string]any{}
	}
	return singleAction(agent.Action{ToolName: decision.Tool, ToolArgs: decision.Args}), nil
}

func (p *LLMRouterPlanner) buildPrompt(task string) string {
	var specLines []string
	for _, spec := range p.ToolSpecs {
		specLines = append(specLines, fmt.Sprintf("- %s: args=%v", spec.Tool, spec.Args))
	}
	return fmt.Sprintf(
		"%s\nAllowed tools and their arguments:\n%s\nReturn ONLY JSON like {\"tool\": \"name\", \"args\": {...}}.\nUser task: %s\n",
		p.SystemPrompt, strings.Join(specLines, "\n"), task,
	)
}

func unableToRoute() agent.FinalResponse {
	const msg = "Unable to route request to a known tool."
	return agent.FinalResponse{
		Operation:            agent.OpDisplayMessage,
		Payload:              map[string]any{"message": msg, "error": true},
		HumanReadableSummary: msg,
	}
}
