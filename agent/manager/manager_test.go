package manager_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/jobstore"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/manager"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/telemetry"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// stubDelegate is a fake worker.Delegate driven by a canned response (or a
// sequence, one per call), used to exercise a Manager without a real
// worker.Worker underneath.
type stubDelegate struct {
	responses []agent.FinalResponse
	calls     int
	tasks     []string
}

func (s *stubDelegate) RunDelegated(_ context.Context, _ worker.ProgressHandler, req worker.DelegationRequest) (agent.FinalResponse, error) {
	s.tasks = append(s.tasks, req.Task)
	if s.calls >= len(s.responses) {
		r := s.responses[len(s.responses)-1]
		s.calls++
		return r, nil
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func ok(summary string) agent.FinalResponse {
	return agent.FinalResponse{Operation: agent.OpDisplayMessage, Payload: map[string]any{"message": summary}, HumanReadableSummary: summary}
}

func withJob(jobID string) context.Context {
	return agent.WithContext(context.Background(), agent.RequestContext{JobID: jobID})
}

func newManager(t *testing.T, workers map[string]worker.Delegate) *manager.Manager {
	t.Helper()
	return &manager.Manager{
		Name:      "test-manager",
		Version:   "v1",
		Workers:   workers,
		Memory:    memory.NewHierarchicalManagerView(memory.NewStore(), "job-1", "test-manager", nil),
		JobStore:  jobstore.NewMemoryStore(nil),
		Telemetry: telemetry.Noop(),
	}
}

// Scenario 5: phase-sequential execution ignores a PrimaryWorker override
// and runs phases strictly in order, threading each phase's formatted
// output into the next phase's task.
func TestRunPhaseSequential(t *testing.T) {
	researcher := &stubDelegate{responses: []agent.FinalResponse{ok("researched the topic")}}
	writer := &stubDelegate{responses: []agent.FinalResponse{ok("wrote the draft")}}

	m := newManager(t, map[string]worker.Delegate{"researcher": researcher, "writer": writer})

	plan := &agent.StrategicPlan{
		PrimaryWorker: "writer",
		Phases: []agent.Phase{
			{Name: "research", Worker: "researcher", Goals: "research the topic"},
			{Name: "draft", Worker: "writer", Goals: "write the draft"},
		},
	}

	result, err := m.Run(withJob("job-1"), "write a report", nil, plan, "")
	require.NoError(t, err)
	assert.False(t, result.IsError())

	require.Len(t, writer.tasks, 1)
	assert.Contains(t, writer.tasks[0], "write the draft")
	assert.Contains(t, writer.tasks[0], "researched the topic")
	assert.Contains(t, writer.tasks[0], "Previous Phase Output")
}

// Parallel fan-out: a planner returning more than one action delegates to
// every named worker concurrently and aggregates a display_message with one
// section per worker.
func TestRunParallelDelegation(t *testing.T) {
	billing := &stubDelegate{responses: []agent.FinalResponse{ok("billing checked")}}
	inventory := &stubDelegate{responses: []agent.FinalResponse{ok("inventory checked")}}

	m := newManager(t, map[string]worker.Delegate{"billing": billing, "inventory": inventory})
	m.Planner = &stubPlanner{outcome: agent.PlanOutcome{Actions: []agent.Action{
		{ToolName: "billing", ToolArgs: map[string]any{"task": "check billing"}},
		{ToolName: "inventory", ToolArgs: map[string]any{"task": "check inventory"}},
	}}}

	result, err := m.Run(withJob("job-1"), "check billing and inventory", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, agent.OpDisplayMessage, result.Operation)
	sections, ok := result.Payload["sections"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, sections, 2)
}

// HITL bubble-up: when a delegated worker returns an await_approval
// response, the manager must return it unchanged rather than continuing to
// the next phase or synthesizing.
func TestRunPhaseSequentialHITLBubblesUp(t *testing.T) {
	approval := agent.FinalResponse{
		Operation:            agent.OpAwaitApproval,
		Payload:              map[string]any{"tool": "delete_table", "args": map[string]any{}},
		HumanReadableSummary: "approval required",
	}
	dba := &stubDelegate{responses: []agent.FinalResponse{approval}}
	writer := &stubDelegate{responses: []agent.FinalResponse{ok("should not run")}}

	m := newManager(t, map[string]worker.Delegate{"dba": dba, "writer": writer})

	plan := &agent.StrategicPlan{Phases: []agent.Phase{
		{Name: "drop", Worker: "dba", Goals: "drop the table"},
		{Name: "report", Worker: "writer", Goals: "report it"},
	}}

	result, err := m.Run(withJob("job-1"), "drop the table and report", nil, plan, "")
	require.NoError(t, err)
	assert.Equal(t, agent.OpAwaitApproval, result.Operation)
	assert.Equal(t, "delete_table", result.Payload["tool"])
	assert.Empty(t, writer.tasks)
}

// Script-mode failure short-circuit at the manager tier: a segment whose
// delegated result is an error response stops execution of later segments
// and the aggregation reports overall_status FAILED.
func TestRunManagerScriptShortCircuit(t *testing.T) {
	stepA := &stubDelegate{responses: []agent.FinalResponse{ok("step a done")}}
	stepB := &stubDelegate{responses: []agent.FinalResponse{agent.ErrorResponse(agent.ErrExecution, "step b failed", nil)}}
	stepC := &stubDelegate{responses: []agent.FinalResponse{ok("step c done")}}

	m := newManager(t, map[string]worker.Delegate{"a": stepA, "b": stepB, "c": stepC})
	m.Planner = &stubPlanner{outcome: agent.PlanOutcome{Actions: []agent.Action{
		{ToolName: manager.ActionScript, ToolArgs: map[string]any{
			"steps": []agent.ScriptStep{
				{Name: "a", Worker: "a", ExecutionMode: agent.ExecGuided, Notes: "do a"},
				{Name: "b", Worker: "b", ExecutionMode: agent.ExecGuided, Notes: "do b"},
				{Name: "c", Worker: "c", ExecutionMode: agent.ExecGuided, Notes: "do c"},
			},
		}},
	}}}

	result, err := m.Run(withJob("job-1"), "run the script", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.Payload["overall_status"])
	assert.Empty(t, stepC.tasks)
}

type stubPlanner struct {
	outcome agent.PlanOutcome
}

func (p *stubPlanner) Plan(_ context.Context, _ string, _ []agent.Message) (agent.PlanOutcome, error) {
	return p.outcome, nil
}
