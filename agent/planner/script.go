package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/model"
)

// ManagerScriptPlanner asks an LLM to emit a deterministic script over a
// fixed worker set, the "manager script planner" shape. Its outcome
// is the ActionScript directive the manager turns into script-mode
// delegation.
type ManagerScriptPlanner struct {
	Client  model.Client
	Model   string
	Workers []WorkerSpec

	SystemPrompt string
}

// NewManagerScriptPlanner builds a ManagerScriptPlanner with a default
// system prompt.
func NewManagerScriptPlanner(client model.Client, modelID string, workers []WorkerSpec) *ManagerScriptPlanner {
	return &ManagerScriptPlanner{
		Client:  client,
		Model:   modelID,
		Workers: workers,
		SystemPrompt: "You are a deterministic planner. Lay out the exact sequence of steps that " +
			"solves the task and return ONLY the JSON script.",
	}
}

// scriptEnvelope is the JSON shape ManagerScriptPlanner asks the model for.
type scriptEnvelope struct {
	Thought string `json:"thought"`
	Script  []struct {
		Name          string         `json:"name"`
		Worker        string         `json:"worker"`
		ToolName      string         `json:"tool_name"`
		Args          map[string]any `json:"args"`
		ExecutionMode string         `json:"execution_mode"`
		Notes         string         `json:"notes"`
	} `json:"script"`
}

func (p *ManagerScriptPlanner) Plan(ctx context.Context, task string, _ []agent.Message) (agent.PlanOutcome, error) {
	messages := p.buildMessages(ctx, task)
	resp, err := p.Client.Complete(ctx, model.Request{Model: p.Model, Messages: messages})
	if err != nil {
		return agent.PlanOutcome{}, fmt.Errorf("planner: manager script: %w", err)
	}

	jsonStr, ok := extractJSON(resp.Text)
	if !ok {
		return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse, "script planner returned no JSON script", nil)), nil
	}
	var env scriptEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse, "script plan could not be parsed: "+err.Error(), nil)), nil
	}
	if len(env.Script) == 0 {
		return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse, "script plan contains no steps", nil)), nil
	}

	steps := make([]agent.ScriptStep, 0, len(env.Script))
	for i, s := range env.Script {
		mode := agent.ExecutionMode(strings.ToLower(strings.TrimSpace(s.ExecutionMode)))
		if mode == "" {
			mode = agent.ExecDirect
		}
		if mode != agent.ExecDirect && mode != agent.ExecGuided {
			return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse,
				fmt.Sprintf("script step %d has unknown execution_mode %q", i, s.ExecutionMode), nil)), nil
		}
		args := s.Args
		if args == nil {
			args = map[string]any{}
		}
		steps = append(steps, agent.ScriptStep{
			Name:          s.Name,
			Worker:        s.Worker,
			ToolName:      s.ToolName,
			Args:          args,
			ExecutionMode: mode,
			Notes:         s.Notes,
		})
	}

	toolArgs := map[string]any{"steps": steps}
	if env.Thought != "" {
		toolArgs["metadata"] = map[string]any{"thought": env.Thought}
	}
	return singleAction(agent.Action{ToolName: ActionScript, ToolArgs: toolArgs}), nil
}

func (p *ManagerScriptPlanner) buildMessages(ctx context.Context, task string) []model.Message {
	prompt := p.SystemPrompt
	if rc, ok := agent.FromContext(ctx); ok {
		prompt += planContextBlock(rc)
	}

	var workers []string
	for _, w := range p.Workers {
		workers = append(workers, fmt.Sprintf("- %s: %s (tools: %s)", w.Key, w.Description, strings.Join(w.Tools, ", ")))
	}
	user := fmt.Sprintf(
		"Available workers:\n%s\n\nTask: %s\n\nReturn JSON: {\"thought\": \"...\", \"script\": [{\"name\": \"...\", "+
			"\"worker\": \"<key>\", \"tool_name\": \"...\", \"args\": {...}, \"execution_mode\": \"direct\"|\"guided\", \"notes\": \"...\"}]}",
		strings.Join(workers, "\n"), task,
	)
	return []model.Message{
		{Role: model.RoleSystem, Content: prompt},
		{Role: model.RoleUser, Content: user},
	}
}
