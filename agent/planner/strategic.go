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
)

// WorkerSpec describes one worker a manager-tier planner may plan phases or
// script steps for.
type WorkerSpec struct {
	Key         string
	Description string
	Tools       []string
}

// StrategicPlanner asks an LLM to decompose a task into an ordered phase
// plan over a fixed worker set, the "strategic phase planner" shape.
// Its outcome is the ActionStrategicPlan directive the manager turns into
// phase-sequential execution.
type StrategicPlanner struct {
	Client  model.Client
	Model   string
	Workers []WorkerSpec

	SystemPrompt  string
	Settings      *envcfg.PromptSettings
	HistoryFilter history.Filter
}

// NewStrategicPlanner builds a StrategicPlanner with a default system
// prompt, an OrchestratorFilter for conversation history, and
// environment-derived prompt settings.
func NewStrategicPlanner(client model.Client, modelID string, workers []WorkerSpec) *StrategicPlanner {
	settings := envcfg.PromptSettingsFromEnv()
	return &StrategicPlanner{
		Client:  client,
		Model:   modelID,
		Workers: workers,
		SystemPrompt: "You are a planning director. Break the task into sequential phases, " +
			"each owned by exactly one worker, and return ONLY the JSON plan.",
		Settings:      &settings,
		HistoryFilter: history.OrchestratorFilter{},
	}
}

// strategicEnvelope is the JSON shape StrategicPlanner asks the model for.
type strategicEnvelope struct {
	PrimaryWorker string `json:"primary_worker"`
	TaskType      string `json:"task_type"`
	Phases        []struct {
		Name   string `json:"name"`
		Worker string `json:"worker"`
		Goals  string `json:"goals"`
		Notes  string `json:"notes"`
	} `json:"phases"`
	Rationale string `json:"rationale"`
}

func (p *StrategicPlanner) settings() envcfg.PromptSettings {
	if p.Settings != nil {
		return *p.Settings
	}
	return envcfg.DefaultPromptSettings()
}

func (p *StrategicPlanner) Plan(ctx context.Context, task string, hist []agent.Message) (agent.PlanOutcome, error) {
	messages := p.buildMessages(ctx, task, hist)
	resp, err := p.Client.Complete(ctx, model.Request{Model: p.Model, Messages: messages})
	if err != nil {
		return agent.PlanOutcome{}, fmt.Errorf("planner: strategic: %w", err)
	}

	jsonStr, ok := extractJSON(resp.Text)
	if !ok {
		return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse, "strategic planner returned no JSON plan", nil)), nil
	}
	var env strategicEnvelope
	if err := json.Unmarshal([]byte(jsonStr), &env); err != nil {
		return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse, "strategic plan could not be parsed: "+err.Error(), nil)), nil
	}

	plan := &agent.StrategicPlan{
		PrimaryWorker: env.PrimaryWorker,
		TaskType:      env.TaskType,
		Rationale:     env.Rationale,
	}
	for _, ph := range env.Phases {
		plan.Phases = append(plan.Phases, agent.Phase{
			Name:   ph.Name,
			Worker: ph.Worker,
			Goals:  ph.Goals,
			Notes:  ph.Notes,
		})
	}

	if len(plan.Phases) == 0 {
		if plan.PrimaryWorker == "" {
			return finalOutcome(agent.ErrorResponse(agent.ErrPlanParse, "strategic plan names no phases and no primary worker", nil)), nil
		}
		// A plan with a primary worker but no phases is a single delegation.
		return singleAction(agent.Action{ToolName: plan.PrimaryWorker, ToolArgs: map[string]any{}}), nil
	}
	return singleAction(agent.Action{
		ToolName: ActionStrategicPlan,
		ToolArgs: map[string]any{"plan": plan},
	}), nil
}

func (p *StrategicPlanner) buildMessages(ctx context.Context, task string, hist []agent.Message) []model.Message {
	settings := p.settings()

	prompt := p.SystemPrompt
	rc, hasRC := agent.FromContext(ctx)
	if hasRC {
		prompt += planContextBlock(rc)
	}
	messages := []model.Message{{Role: model.RoleSystem, Content: prompt}}

	// With a director context present, conversation history is dropped from
	// the prompt unless the host opts back in.
	includeHistory := settings.IncludeHistory
	if hasRC && rc.DirectorContext != "" && !settings.StrategicHistoryWithDirectorContext {
		includeHistory = false
	}
	if includeHistory {
		filtered := hist
		if p.HistoryFilter != nil {
			filtered = p.HistoryFilter.Filter(hist, history.FilterContext{})
		}
		if settings.MaxHistoryEntries > 0 && len(filtered) > settings.MaxHistoryEntries {
			filtered = filtered[len(filtered)-settings.MaxHistoryEntries:]
		}
		for _, m := range filtered {
			switch m.Type {
			case agent.TypeUserMessage:
				messages = append(messages, model.Message{Role: model.RoleUser, Content: toText(m.Content)})
			case agent.TypeAssistantMessage:
				messages = append(messages, model.Message{Role: model.RoleAssistant, Content: toText(m.Content)})
			}
		}
	}

	var workers []string
	for _, w := range p.Workers {
		workers = append(workers, fmt.Sprintf("- %s: %s (tools: %s)", w.Key, w.Description, strings.Join(w.Tools, ", ")))
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: fmt.Sprintf(
		"Available workers:\n%s\n\nTask: %s\n\nReturn JSON: {\"primary_worker\": \"<key>\", \"task_type\": \"...\", "+
			"\"phases\": [{\"name\": \"...\", \"worker\": \"<key>\", \"goals\": \"...\", \"notes\": \"...\"}], \"rationale\": \"...\"}",
		strings.Join(workers, "\n"), task,
	)})
	return messages
}
