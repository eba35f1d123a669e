package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/envcfg"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/history"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/model"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
)

// ReActPlanner drives the plan/act/observe loop with a model's native
// function-calling support: the registry's tools are exposed as provider
// tool definitions, tool calls in the response become Actions, and a
// text-only response becomes a FinalResponse. This is the "ReAct with
// native function-calling" planner shape.
type ReActPlanner struct {
	Client model.Client
	Model  string
	Tools  *tools.Registry

	SystemPrompt string
	// Settings shapes how much history/trace is rendered into the prompt.
	// Zero value means DefaultPromptSettings.
	Settings *envcfg.PromptSettings
	// HistoryFilter projects the full feed before rendering; nil defaults to
	// WorkerFilter (current-turn isolation).
	HistoryFilter history.Filter
}

// NewReActPlanner builds a ReActPlanner with a default system prompt and
// environment-derived prompt settings.
func NewReActPlanner(client model.Client, modelID string, registry *tools.Registry) *ReActPlanner {
	settings := envcfg.PromptSettingsFromEnv()
	return &ReActPlanner{
		Client: client,
		Model:  modelID,
		Tools:  registry,
		SystemPrompt: "You are a tool-using agent. Inspect the task and the execution trace, " +
			"then either call the tool that makes progress or reply with a short final answer. " +
			"Call complete_task when the task is done.",
		Settings: &settings,
	}
}

func (p *ReActPlanner) settings() envcfg.PromptSettings {
	if p.Settings != nil {
		return *p.Settings
	}
	return envcfg.DefaultPromptSettings()
}

func (p *ReActPlanner) Plan(ctx context.Context, task string, hist []agent.Message) (agent.PlanOutcome, error) {
	settings := p.settings()

	prompt := p.SystemPrompt
	if rc, ok := agent.FromContext(ctx); ok {
		prompt += planContextBlock(rc)
	}
	messages := []model.Message{
		{Role: model.RoleSystem, Content: prompt},
		{Role: model.RoleUser, Content: "Task: " + task},
	}
	if trace := renderTrace(p.filterHistory(hist), settings); trace != "" {
		messages = append(messages, model.Message{Role: model.RoleUser, Content: trace})
	}

	resp, err := p.Client.Complete(ctx, model.Request{
		Model:      p.Model,
		Messages:   messages,
		Tools:      toolDefinitions(p.Tools),
		ToolChoice: settings.ToolChoice,
	})
	if err != nil {
		return agent.PlanOutcome{}, fmt.Errorf("planner: react: %w", err)
	}

	if len(resp.ToolCalls) > 0 {
		actions := make([]agent.Action, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			args := map[string]any{}
			if len(call.Input) > 0 {
				if err := json.Unmarshal(call.Input, &args); err != nil {
					return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse,
						fmt.Sprintf("tool call %s carried unparseable arguments", call.Name), nil)), nil
				}
			}
			actions = append(actions, agent.Action{ToolName: call.Name, ToolArgs: args})
		}
		return agent.PlanOutcome{Actions: actions}, nil
	}

	return finalOutcome(textFinal(resp.Text)), nil
}

func (p *ReActPlanner) filterHistory(hist []agent.Message) []agent.Message {
	filter := p.HistoryFilter
	if filter == nil {
		filter = history.WorkerFilter{}
	}
	return filter.Filter(hist, history.FilterContext{})
}

// TextReActPlanner is the "ReAct without native function-calling" shape:
// the model is asked to emit a strict JSON envelope naming either
// the next action(s) or a final response. A parse failure is converted into
// one self-correcting retry ("retry with simpler formatting") before
// becoming a terminal PlanParseError.
type TextReActPlanner struct {
	Client model.Client
	Model  string
	Tools  *tools.Registry

	SystemPrompt string
	Settings     *envcfg.PromptSettings
	// MaxParseRetries bounds the self-correction retries after unparseable
	// output. Zero means one retry.
	MaxParseRetries int
	HistoryFilter   history.Filter
}

// NewTextReActPlanner builds a TextReActPlanner with a default system
// prompt, one parse retry, and environment-derived prompt settings.
func NewTextReActPlanner(client model.Client, modelID string, registry *tools.Registry) *TextReActPlanner {
	settings := envcfg.PromptSettingsFromEnv()
	return &TextReActPlanner{
		Client:          client,
		Model:           modelID,
		Tools:           registry,
		SystemPrompt:    "You are a tool-using agent that answers ONLY with a single JSON object.",
		Settings:        &settings,
		MaxParseRetries: 1,
	}
}

// reactEnvelope is the JSON shape TextReActPlanner asks the model for.
type reactEnvelope struct {
	Thought string `json:"thought"`
	Action  *struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	} `json:"action"`
	Actions []struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	} `json:"actions"`
	FinalResponse *struct {
		Operation string         `json:"operation"`
		Payload   map[string]any `json:"payload"`
		Summary   string         `json:"summary"`
	} `json:"final_response"`
}

func (p *TextReActPlanner) settings() envcfg.PromptSettings {
	if p.Settings != nil {
		return *p.Settings
	}
	return envcfg.DefaultPromptSettings()
}

func (p *TextReActPlanner) Plan(ctx context.Context, task string, hist []agent.Message) (agent.PlanOutcome, error) {
	settings := p.settings()

	filter := p.HistoryFilter
	if filter == nil {
		filter = history.WorkerFilter{}
	}
	trace := renderTrace(filter.Filter(hist, history.FilterContext{}), settings)

	messages := []model.Message{
		{Role: model.RoleSystem, Content: p.buildSystemPrompt(ctx)},
		{Role: model.RoleUser, Content: p.buildUserPrompt(task, trace)},
	}

	retries := p.MaxParseRetries
	if retries <= 0 {
		retries = 1
	}
	for attempt := 0;; attempt++ {
		resp, err := p.Client.Complete(ctx, model.Request{Model: p.Model, Messages: messages})
		if err != nil {
			return agent.PlanOutcome{}, fmt.Errorf("planner: text react: %w", err)
		}

		outcome, parseErr := p.parse(resp.Text)
		if parseErr == nil {
			return outcome, nil
		}
		if attempt >= retries {
			return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse,
				"planner output could not be parsed: "+parseErr.Error(), nil)), nil
		}
		messages = append(messages,
			model.Message{Role: model.RoleAssistant, Content: resp.Text},
			model.Message{Role: model.RoleUser, Content: "Your previous reply could not be parsed (" +
				parseErr.Error() + "). Retry with simpler formatting: return ONLY one valid JSON object, no prose."},
		)
	}
}

func (p *TextReActPlanner) buildSystemPrompt(ctx context.Context) string {
	var b strings.Builder
	b.WriteString(p.SystemPrompt)
	b.WriteString("\n\nAvailable tools:\n")
	for _, t := range toolDefinitions(p.Tools) {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		if t.InputSchema != nil {
			if data, err := json.Marshal(t.InputSchema); err == nil {
				fmt.Fprintf(&b, "  args schema: %s\n", truncateStr(string(data), 400))
			}
		}
	}
	b.WriteString("\nReply with exactly one JSON object, either\n" +
		`{"thought": "...", "action": {"tool": "<name>", "args": {...}}}` + "\nor\n" +
		`{"thought": "...", "final_response": {"operation": "display_message", "payload": {"message": "..."}, "summary": "..."}}` + "\n" +
		`A batch of independent actions may be returned as {"thought": "...", "actions": [...]}.`)
	if rc, ok := agent.FromContext(ctx); ok {
		b.WriteString(planContextBlock(rc))
	}
	return b.String()
}

func (p *TextReActPlanner) buildUserPrompt(task, trace string) string {
	if trace == "" {
		return "Task: " + task
	}
	return "Task: " + task + "\n\n" + trace
}

func (p *TextReActPlanner) parse(text string) (agent.PlanOutcome, error) {
	jsonStr, ok := extractJSON(text)
	if !ok {
		return agent.PlanOutcome{}, fmt.Errorf("no JSON object found")
	}
	var env reactEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return agent.PlanOutcome{}, err
	}
	switch {
	case env.FinalResponse != nil:
		op := agent.Operation(env.FinalResponse.Operation)
		if op == "" {
			op = agent.OpDisplayMessage
		}
		payload := env.FinalResponse.Payload
		if payload == nil {
			payload = map[string]any{"message": env.FinalResponse.Summary}
		}
		return finalOutcome(agent.FinalResponse{
			Operation:            op,
			Payload:              payload,
			HumanReadableSummary: env.FinalResponse.Summary,
		}), nil
	case env.Action != nil && env.Action.Tool != "":
		args := env.Action.Args
		if args == nil {
			args = map[string]any{}
		}
		return singleAction(agent.Action{ToolName: env.Action.Tool, ToolArgs: args}), nil
	case len(env.Actions) > 0:
		actions := make([]agent.Action, 0, len(env.Actions))
		for _, a := range env.Actions {
			if a.Tool == "" {
				return agent.PlanOutcome{}, fmt.Errorf("actions entry missing tool name")
			}
			args := a.Args
			if args == nil {
				args = map[string]any{}
			}
			actions = append(actions, agent.Action{ToolName: a.Tool, ToolArgs: args})
		}
		return agent.PlanOutcome{Actions: actions}, nil
	}
	return agent.PlanOutcome{}, fmt.Errorf("JSON object named neither an action nor a final_response")
}

// toolDefinitions renders a registry's tools as provider tool definitions.
func toolDefinitions(registry *tools.Registry) []model.ToolDefinition {
	if registry == nil {
		return nil
	}
	all := registry.All()
	defs := make([]model.ToolDefinition, 0, len(all))
	for _, t := range all {
		var schema any
		if raw := t.ArgsSchema().Raw(); raw != nil {
			schema = raw
		}
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		})
	}
	return defs
}

// renderTrace renders the filtered history as an execution-trace block,
// honoring the inclusion toggles and the observation truncation limit.
func renderTrace(filtered []agent.Message, settings envcfg.PromptSettings) string {
	if !settings.IncludeHistory || len(filtered) == 0 {
		return ""
	}
	if settings.MaxHistoryEntries > 0 && len(filtered) > settings.MaxHistoryEntries {
		filtered = filtered[len(filtered)-settings.MaxHistoryEntries:]
	}
	var lines []string
	for _, m := range filtered {
		switch m.Type {
		case agent.TypeAction:
			if !settings.IncludeExecutionTraces {
				continue
			}
			lines = append(lines, fmt.Sprintf("action: %s args=%s", m.Tool, toText(m.Args)))
		case agent.TypeObservation:
			if !settings.IncludeExecutionTraces {
				continue
			}
			obs := toText(m.Content)
			if settings.ObservationMaxChars > 0 {
				obs = truncateStr(obs, settings.ObservationMaxChars)
			}
			lines = append(lines, "observation: "+obs)
		case agent.TypeError:
			lines = append(lines, "error: "+toText(m.Content))
		case agent.TypeGlobalObservation:
			if !settings.IncludeGlobalObservations {
				continue
			}
			lines = append(lines, "broadcast: "+toText(m.Content))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Execution trace so far:\n" + strings.Join(lines, "\n")
}

// textFinal wraps free-form model text into a display_message final
// response.
func textFinal(text string) agent.FinalResponse {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "Task handled."
	}
	return agent.FinalResponse{
		Operation:            agent.OpDisplayMessage,
		Payload:              map[string]any{"message": text},
		HumanReadableSummary: text,
	}
}
