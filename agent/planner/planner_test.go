package planner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/envcfg"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/model"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
)

// fakeClient returns queued responses in order and records every request it
// receives.
type fakeClient struct {
	responses []model.Response
	requests  []model.Request
}

func (c *fakeClient) Complete(_ context.Context, req model.Request) (model.Response, error) {
	c.requests = append(c.requests, req)
	if len(c.responses) == 0 {
		return model.Response{Text: ""}, nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

type stubTool struct {
	name string
	desc string
}

func (t stubTool) Name() string              { return t.name }
func (t stubTool) Description() string       { return t.desc }
func (t stubTool) ArgsSchema() *tools.Schema { return nil }
func (t stubTool) Execute(context.Context, map[string]any) (any, error) {
	return nil, nil
}

func registryWith(names ...string) *tools.Registry {
	r := tools.NewRegistry()
	for _, n := range names {
		r.Register(stubTool{name: n, desc: n + " tool"})
	}
	return r
}

func TestExtractJSONPrefersFencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"tool\": \"echo\"}\n```\ntrailing {not json}"
	got, ok := extractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"tool": "echo"}`, got)
}

func TestExtractJSONFallsBackToBareBraces(t *testing.T) {
	got, ok := extractJSON(`prefix {"tool": "echo", "args": {}} suffix`)
	require.True(t, ok)
	assert.Contains(t, got, `"tool"`)

	_, ok = extractJSON("no json here")
	assert.False(t, ok)
}

func TestStaticPlannerRoutesKeywordsToMockSearch(t *testing.T) {
	p := NewStaticPlanner(nil)
	outcome, err := p.Plan(context.Background(), "please search for cats", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, "mock_search", outcome.Actions[0].ToolName)

	outcome, err = p.Plan(context.Background(), "say hello", nil)
	require.NoError(t, err)
	assert.True(t, outcome.IsFinal())
}

func TestLLMRouterPlannerParsesDecision(t *testing.T) {
	client := &fakeClient{responses: []model.Response{
		{Text: `{"tool": "list_columns", "args": {"table": "A"}}`},
	}}
	p := NewLLMRouterPlanner(client, "m", []ToolSpec{{Tool: "list_columns", Args: []string{"table"}}})

	outcome, err := p.Plan(context.Background(), "show columns of A", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, "list_columns", outcome.Actions[0].ToolName)
	assert.Equal(t, "A", outcome.Actions[0].ToolArgs["table"])
}

func TestLLMRouterPlannerUnparseableOutputIsGracefulFinal(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: "I cannot decide."}}}
	p := NewLLMRouterPlanner(client, "m", nil)

	outcome, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.True(t, outcome.IsFinal())
	assert.Equal(t, agent.OpDisplayMessage, outcome.Final.Operation)
}

func TestWorkerRouterPlannerRulesShortCircuitLLM(t *testing.T) {
	client := &fakeClient{}
	p := NewWorkerRouterPlanner(client, "m", []string{"data_worker", "chat_worker"})
	p.Rules = []RoutingRule{{Worker: "data_worker", Include: []string{"table"}}}

	outcome, err := p.Plan(context.Background(), "describe table orders", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, "data_worker", outcome.Actions[0].ToolName)
	assert.Empty(t, client.requests, "rule match must not invoke the LLM")
}

func TestReActPlannerTurnsToolCallsIntoActions(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{
		ToolCalls: []model.ToolCall{
			{ID: "1", Name: "list_columns", Input: json.RawMessage(`{"table":"A"}`)},
			{ID: "2", Name: "list_columns", Input: json.RawMessage(`{"table":"B"}`)},
		},
	}}}
	p := NewReActPlanner(client, "m", registryWith("list_columns", "complete_task"))

	outcome, err := p.Plan(context.Background(), "list both tables", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 2)
	assert.Equal(t, "A", outcome.Actions[0].ToolArgs["table"])
	assert.Equal(t, "B", outcome.Actions[1].ToolArgs["table"])

	require.Len(t, client.requests, 1)
	assert.Len(t, client.requests[0].Tools, 2)
}

func TestReActPlannerTextOnlyResponseBecomesFinal(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: "All done, nothing to run."}}}
	p := NewReActPlanner(client, "m", registryWith("echo"))

	outcome, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.True(t, outcome.IsFinal())
	assert.Equal(t, "All done, nothing to run.", outcome.Final.HumanReadableSummary)
}

func TestReActPlannerForwardsToolChoice(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: "ok"}}}
	settings := envcfg.DefaultPromptSettings()
	settings.ToolChoice = model.ToolChoiceRequired
	p := NewReActPlanner(client, "m", registryWith("echo"))
	p.Settings = &settings

	_, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, model.ToolChoiceRequired, client.requests[0].ToolChoice)
}

func TestReActPlannerRendersCurrentTurnTrace(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: "ok"}}}
	p := NewReActPlanner(client, "m", registryWith("echo"))

	hist := []agent.Message{
		{Type: agent.TypeTask, Content: "old turn"},
		{Type: agent.TypeAction, Tool: "echo", Args: map[string]any{"s": "stale"}},
		{Type: agent.TypeTask, Content: "current"},
		{Type: agent.TypeAction, Tool: "echo", Args: map[string]any{"s": "hi"}},
		{Type: agent.TypeObservation, Tool: "echo", Content: map[string]any{"echoed": "hi"}},
	}
	_, err := p.Plan(context.Background(), "task", hist)
	require.NoError(t, err)

	var trace string
	for _, m := range client.requests[0].Messages {
		if m.Role == model.RoleUser {
			trace += m.Content + "\n"
		}
	}
	assert.Contains(t, trace, `"s":"hi"`)
	assert.NotContains(t, trace, "stale", "prior-turn entries must not leak into the prompt")
}

func TestTextReActPlannerParsesActionEnvelope(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{
		Text: `{"thought": "run it", "action": {"tool": "echo", "args": {"s": "hi"}}}`,
	}}}
	p := NewTextReActPlanner(client, "m", registryWith("echo"))

	outcome, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, "echo", outcome.Actions[0].ToolName)
}

func TestTextReActPlannerParsesFinalResponseEnvelope(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{
		Text: `{"thought": "done", "final_response": {"operation": "display_message", "payload": {"message": "done"}, "summary": "done"}}`,
	}}}
	p := NewTextReActPlanner(client, "m", registryWith("echo"))

	outcome, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.True(t, outcome.IsFinal())
	assert.Equal(t, "done", outcome.Final.HumanReadableSummary)
}

func TestTextReActPlannerRetriesOnceThenFailsParse(t *testing.T) {
	client := &fakeClient{responses: []model.Response{
		{Text: "not json at all"},
		{Text: "still not json"},
	}}
	p := NewTextReActPlanner(client, "m", registryWith("echo"))

	outcome, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.True(t, outcome.IsFinal())
	assert.True(t, outcome.Final.IsError())
	assert.Equal(t, string(agent.ErrPlanParse), outcome.Final.Payload["error_type"])

	require.Len(t, client.requests, 2)
	last := client.requests[1].Messages
	assert.Contains(t, last[len(last)-1].Content, "simpler formatting")
}

func TestTextReActPlannerSelfCorrectsAfterBadOutput(t *testing.T) {
	client := &fakeClient{responses: []model.Response{
		{Text: "garbage"},
		{Text: `{"thought": "fixed", "action": {"tool": "echo", "args": {}}}`},
	}}
	p := NewTextReActPlanner(client, "m", registryWith("echo"))

	outcome, err := p.Plan(context.Background(), "task", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, "echo", outcome.Actions[0].ToolName)
}

func TestStrategicPlannerProducesPlanDirective(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{
		"primary_worker": "w1",
		"task_type": "analysis",
		"phases": [
			{"name": "gather", "worker": "w1", "goals": "G1"},
			{"name": "report", "worker": "w2", "goals": "G2"}
		],
		"rationale": "two stage"
	}`}}}
	p := NewStrategicPlanner(client, "m", []WorkerSpec{{Key: "w1"}, {Key: "w2"}})

	outcome, err := p.Plan(context.Background(), "analyze", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, ActionStrategicPlan, outcome.Actions[0].ToolName)

	plan, ok := outcome.Actions[0].ToolArgs["plan"].(*agent.StrategicPlan)
	require.True(t, ok)
	require.Len(t, plan.Phases, 2)
	assert.Equal(t, "w1", plan.Phases[0].Worker)
	assert.Equal(t, "G2", plan.Phases[1].Goals)
}

func TestStrategicPlannerNoPhasesFallsBackToPrimaryWorker(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{"primary_worker": "w1", "phases": []}`}}}
	p := NewStrategicPlanner(client, "m", []WorkerSpec{{Key: "w1"}})

	outcome, err := p.Plan(context.Background(), "simple", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, "w1", outcome.Actions[0].ToolName)
}

func TestStrategicPlannerDirectorContextSuppressesHistory(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{"primary_worker": "w1"}`}}}
	p := NewStrategicPlanner(client, "m", []WorkerSpec{{Key: "w1"}})

	ctx := agent.WithContext(context.Background(), agent.RequestContext{DirectorContext: "briefing"})
	hist := []agent.Message{{Type: agent.TypeUserMessage, Content: "earlier question"}}
	_, err := p.Plan(ctx, "task", hist)
	require.NoError(t, err)

	for _, m := range client.requests[0].Messages {
		assert.NotContains(t, m.Content, "earlier question")
	}
}

func TestStrategicPlannerEnvOptInKeepsHistoryUnderDirectorContext(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{"primary_worker": "w1"}`}}}
	settings := envcfg.DefaultPromptSettings()
	settings.StrategicHistoryWithDirectorContext = true
	p := NewStrategicPlanner(client, "m", []WorkerSpec{{Key: "w1"}})
	p.Settings = &settings

	ctx := agent.WithContext(context.Background(), agent.RequestContext{DirectorContext: "briefing"})
	hist := []agent.Message{{Type: agent.TypeUserMessage, Content: "earlier question"}}
	_, err := p.Plan(ctx, "task", hist)
	require.NoError(t, err)

	var found bool
	for _, m := range client.requests[0].Messages {
		if m.Content == "earlier question" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestManagerScriptPlannerProducesScriptDirective(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{
		"thought": "two deterministic steps",
		"script": [
			{"name": "stepA", "worker": "w1", "tool_name": "echo", "args": {"s": "a"}, "execution_mode": "direct"},
			{"name": "stepB", "worker": "w1", "tool_name": "summarize", "execution_mode": "guided"}
		]
	}`}}}
	p := NewManagerScriptPlanner(client, "m", []WorkerSpec{{Key: "w1"}})

	outcome, err := p.Plan(context.Background(), "do it", nil)
	require.NoError(t, err)
	require.Len(t, outcome.Actions, 1)
	assert.Equal(t, ActionScript, outcome.Actions[0].ToolName)

	steps, ok := outcome.Actions[0].ToolArgs["steps"].([]agent.ScriptStep)
	require.True(t, ok)
	require.Len(t, steps, 2)
	assert.Equal(t, agent.ExecDirect, steps[0].ExecutionMode)
	assert.Equal(t, agent.ExecGuided, steps[1].ExecutionMode)

	meta, ok := outcome.Actions[0].ToolArgs["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "two deterministic steps", meta["thought"])
}

func TestManagerScriptPlannerRejectsUnknownExecutionMode(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{
		"script": [{"name": "stepA", "worker": "w1", "tool_name": "echo", "execution_mode": "parallel"}]
	}`}}}
	p := NewManagerScriptPlanner(client, "m", []WorkerSpec{{Key: "w1"}})

	outcome, err := p.Plan(context.Background(), "do it", nil)
	require.NoError(t, err)
	require.True(t, outcome.IsFinal())
	assert.True(t, outcome.Final.IsError())
	assert.Equal(t, string(agent.ErrPlanParse), outcome.Final.Payload["error_type"])
}

func TestManagerScriptPlannerDefaultsMissingModeToDirect(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: `{
		"script": [{"name": "stepA", "worker": "w1", "tool_name": "echo"}]
	}`}}}
	p := NewManagerScriptPlanner(client, "m", []WorkerSpec{{Key: "w1"}})

	outcome, err := p.Plan(context.Background(), "do it", nil)
	require.NoError(t, err)
	steps := outcome.Actions[0].ToolArgs["steps"].([]agent.ScriptStep)
	assert.Equal(t, agent.ExecDirect, steps[0].ExecutionMode)
}
