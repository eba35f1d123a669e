package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/history"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/model"
)

// RoutingRule is a heuristic keyword rule tried before any LLM call.
// Worker is selected when the task contains at least one Include keyword
// (or Include is empty) and none of the Exclude keywords.
type RoutingRule struct {
	Worker  string
	Include []string
	Exclude []string
}

// WorkerRouterPlanner is an orchestrator-level router that maps a
// natural-language task onto one of a fixed set of worker keys: first by
// heuristic rules, then by asking an LLM to classify, falling back to a
// graceful clarification request.
type WorkerRouterPlanner struct {
	Client        model.Client
	Model         string
	WorkerKeys    []string
	Rules         []RoutingRule
	DefaultWorker string
	SystemPrompt  string
	HistoryFilter history.Filter
	MaxHistory    int
}

// NewWorkerRouterPlanner builds a WorkerRouterPlanner with sensible
// defaults: a generic classification system prompt, an OrchestratorFilter
// for history, and a 20-message history cap.
func NewWorkerRouterPlanner(client model.Client, modelID string, workerKeys []string) *WorkerRouterPlanner {
	return &WorkerRouterPlanner{
		Client:     client,
		Model:      modelID,
		WorkerKeys: workerKeys,
		SystemPrompt: "You are a strict classifier. Choose the best worker key for the task " +
			"from the provided options and return only JSON {\"worker\": \"<key>\", \"reason\": \"...\"}.",
		HistoryFilter: history.OrchestratorFilter{},
		MaxHistory:    20,
	}
}

func (p *WorkerRouterPlanner) Plan(ctx context.Context, task string, hist []agent.Message) (agent.PlanOutcome, error) {
	if worker := p.applyRules(task); worker != "" {
		return singleAction(agent.Action{ToolName: worker, ToolArgs: map[string]any{}}), nil
	}

	if p.Client == nil || len(p.WorkerKeys) == 0 {
		return finalOutcome(clarificationNeeded()), nil
	}

	messages := p.buildMessages(ctx, task, hist)
	resp, err := p.Client.Complete(ctx, model.Request{Model: p.Model, Messages: messages})
	if err != nil {
		return agent.PlanOutcome{}, fmt.Errorf("planner: worker router: %w", err)
	}

	if worker, ok := p.parseWorker(resp.Text); ok && contains(p.WorkerKeys, worker) {
		return singleAction(agent.Action{ToolName: worker, ToolArgs: map[string]any{}}), nil
	}
	if p.DefaultWorker != "" && contains(p.WorkerKeys, p.DefaultWorker) {
		return singleAction(agent.Action{ToolName: p.DefaultWorker, ToolArgs: map[string]any{}}), nil
	}
	return finalOutcome(clarificationNeeded()), nil
}

func (p *WorkerRouterPlanner) applyRules(task string) string {
	lower := strings.ToLower(task)
	for _, rule := range p.Rules {
		if rule.Worker == "" {
			continue
		}
		if len(rule.Include) > 0 && !containsAny(lower, rule.Include) {
			continue
		}
		if containsAny(lower, rule.Exclude) {
			continue
		}
		if len(p.WorkerKeys) > 0 && !contains(p.WorkerKeys, rule.Worker) {
			continue
		}
		return rule.Worker
	}
	return ""
}

func (p *WorkerRouterPlanner) buildMessages(ctx context.Context, task string, hist []agent.Message) []model.Message {
	prompt := p.SystemPrompt
	if rc, ok := agent.FromContext(ctx); ok {
		prompt += planContextBlock(rc)
	}
	messages := []model.Message{{Role: model.RoleSystem, Content: prompt}}

	filtered := hist
	if p.HistoryFilter != nil {
		filtered = p.HistoryFilter.Filter(hist, history.FilterContext{})
	}
	if p.MaxHistory > 0 && len(filtered) > p.MaxHistory {
		filtered = filtered[len(filtered)-p.MaxHistory:]
	}
	for _, m := range filtered {
		switch m.Type {
		case agent.TypeUserMessage:
			messages = append(messages, model.Message{Role: model.RoleUser, Content: toText(m.Content)})
		case agent.TypeAssistantMessage:
			messages = append(messages, model.Message{Role: model.RoleAssistant, Content: toText(m.Content)})
		}
	}

	options := strings.Join(p.WorkerKeys, ", ")
	userPrompt := fmt.Sprintf(
		"Available workers: [%s]\n\nUser task: %s\n\nWhich worker should handle this task? Return JSON: {\"worker\": \"<worker_key>\", \"reason\": \"...\"}",
		options, task,
	)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: userPrompt})
	return messages
}

func (p *WorkerRouterPlanner) parseWorker(text string) (string, bool) {
	jsonStr, ok := extractJSON(text)
	if !ok {
		return "", false
	}
	var obj struct {
		Worker string `json:"worker"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &obj); err != nil || obj.Worker == "" {
		return "", false
	}
	return obj.Worker, true
}

func clarificationNeeded() agent.FinalResponse {
	const msg = "I'm not sure which capability should handle this. Could you clarify what you want to do?"
	return agent.FinalResponse{
		Operation:            agent.OpDisplayMessage,
		Payload:              map[string]any{"message": msg},
		HumanReadableSummary: msg,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// toText renders a Message's opaque Content as a display string, since
// prompt assembly only ever needs the textual form of conversation turns.
func toText(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	b, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(b)
}

// planContextBlock renders the strategic plan / director context carried on
// a RequestContext as a prompt-appendable block, matching the source
// framework's practice of injecting these ambiently into every planner
// prompt via request-scoped context.
func planContextBlock(rc agent.RequestContext) string {
	var b strings.Builder
	if rc.StrategicPlan != nil {
		data, err := json.MarshalIndent(rc.StrategicPlan, "", "  ")
		if err == nil {
			b.WriteString("\nSTRATEGIC PLAN (from orchestrator/manager):\n")
			b.WriteString(truncateStr(string(data), 800))
			b.WriteString("\n")
		}
	}
	if rc.DirectorContext != "" {
		b.WriteString(fmt.Sprintf("\nDIRECTOR CONTEXT: %s\n", rc.DirectorContext))
	}
	return b.String()
}

func truncateStr(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
