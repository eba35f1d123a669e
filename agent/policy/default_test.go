package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/policy"
)

func detector() policy.DefaultCompletionDetector {
	return policy.NewDefaultCompletionDetector(policy.DefaultConfig().Completion)
}

func TestCompletionDetectorResultCompletedFlag(t *testing.T) {
	d := detector()
	result := map[string]any{"completed": true}
	assert.True(t, d.IsComplete(result, nil, agent.RequestContext{}))
}

func TestCompletionDetectorIgnoresPreviousTurnSignals(t *testing.T) {
	d := detector()
	full := []agent.Message{
		{Type: agent.TypeTask, Content: "turn1"},
		{Type: agent.TypeAction, Content: "a", Tool: agent.CompleteTaskTool},
		{Type: agent.TypeTask, Content: "turn2"},
		{Type: agent.TypeAction, Content: "b", Tool: "other_tool"},
	}
	assert.False(t, d.IsComplete(nil, full, agent.RequestContext{}),
		"a complete_task action from a prior turn must not leak into the current turn's check")
}

func TestCompletionDetectorFindsCompleteTaskInCurrentTurn(t *testing.T) {
	d := detector()
	full := []agent.Message{
		{Type: agent.TypeTask, Content: "turn1"},
		{Type: agent.TypeAction, Content: "a", Tool: agent.CompleteTaskTool},
	}
	assert.True(t, d.IsComplete(nil, full, agent.RequestContext{}))
}

func TestTerminationPolicyStopsOnFinalResponse(t *testing.T) {
	p := policy.NewDefaultTerminationPolicy(policy.DefaultConfig().Termination, detector())
	outcome := agent.PlanOutcome{Final: &agent.FinalResponse{Operation: agent.OpDisplayMessage}}
	assert.True(t, p.ShouldTerminate(1, outcome, nil, agent.RequestContext{}))
}

func TestTerminationPolicyDoesNotCheckCompletionWhilePlannerIsActingOnActions(t *testing.T) {
	p := policy.NewDefaultTerminationPolicy(policy.TerminationConfig{MaxIterations: 100}, detector())
	full := []agent.Message{
		{Type: agent.TypeObservation, Content: map[string]any{"completed": true}},
	}
	outcome := agent.PlanOutcome{Actions: []agent.Action{{ToolName: "list_columns"}}}
	assert.False(t, p.ShouldTerminate(1, outcome, full, agent.RequestContext{}),
		"planner still returning actions means it isn't done yet, regardless of stale completion signals")
}

func TestTerminationPolicyMaxIterations(t *testing.T) {
	p := policy.NewDefaultTerminationPolicy(policy.TerminationConfig{MaxIterations: 3}, detector())
	outcome := agent.PlanOutcome{}
	assert.True(t, p.ShouldTerminate(4, outcome, nil, agent.RequestContext{}))
	assert.False(t, p.ShouldTerminate(3, outcome, nil, agent.RequestContext{}))
}

func TestLoopPreventionDetectsRepeatedActionsAndObservations(t *testing.T) {
	p := policy.NewDefaultLoopPreventionPolicy(policy.LoopGuardConfig{RepetitionThreshold: 3}, nil)
	actions := []agent.Action{
		{ToolName: "list_columns", ToolArgs: map[string]any{"table": "A"}},
		{ToolName: "list_columns", ToolArgs: map[string]any{"table": "A"}},
		{ToolName: "list_columns", ToolArgs: map[string]any{"table": "A"}},
	}
	observations := []any{"same", "same", "same"}
	reason := p.DetectStagnation(actions, observations, agent.RequestContext{})
	assert.NotEmpty(t, reason)
}

func TestLoopPreventionIgnoresDifferentActions(t *testing.T) {
	p := policy.NewDefaultLoopPreventionPolicy(policy.LoopGuardConfig{RepetitionThreshold: 3}, nil)
	actions := []agent.Action{
		{ToolName: "list_columns", ToolArgs: map[string]any{"table": "A"}},
		{ToolName: "list_columns", ToolArgs: map[string]any{"table": "B"}},
		{ToolName: "list_columns", ToolArgs: map[string]any{"table": "A"}},
	}
	observations := []any{"same", "same", "same"}
	assert.Empty(t, p.DetectStagnation(actions, observations, agent.RequestContext{}))
}

func TestLoopPreventionCompletionTakesPriority(t *testing.T) {
	p := policy.NewDefaultLoopPreventionPolicy(policy.LoopGuardConfig{RepetitionThreshold: 3}, detector())
	observations := []any{map[string]any{"completed": true}}
	reason := p.DetectStagnation(nil, observations, agent.RequestContext{})
	assert.Contains(t, reason, "complete")
}

func TestHITLPolicyRequiresApprovalForWriteTools(t *testing.T) {
	p := policy.NewDefaultHITLPolicy(policy.HITLConfig{Enabled: true, Scope: "writes", WriteTools: []string{"add_table"}}, nil)
	assert.True(t, p.RequiresApproval("add_table", nil, agent.RequestContext{}))
	assert.False(t, p.RequiresApproval("list_columns", nil, agent.RequestContext{}))
}

func TestHITLPolicyBypassesAlreadyApprovedTools(t *testing.T) {
	p := policy.NewDefaultHITLPolicy(policy.HITLConfig{Enabled: true, Scope: "all"}, nil)
	ctx := agent.RequestContext{Approvals: map[string]bool{"add_table": true}}
	assert.False(t, p.RequiresApproval("add_table", nil, ctx))
}

func TestHITLPolicyBypassesExecutedActions(t *testing.T) {
	p := policy.NewDefaultHITLPolicy(policy.HITLConfig{Enabled: true, Scope: "all"}, func(jobID, sig string) bool {
		return jobID == "job1"
	})
	ctx := agent.RequestContext{JobID: "job1"}
	assert.False(t, p.RequiresApproval("add_table", nil, ctx))
}

func TestHITLPolicyDisabledNeverRequiresApproval(t *testing.T) {
	p := policy.NewDefaultHITLPolicy(policy.HITLConfig{Enabled: false, Scope: "all"}, nil)
	assert.False(t, p.RequiresApproval("add_table", nil, agent.RequestContext{}))
}

func TestCheckpointPolicyTriggersOnIterationThreshold(t *testing.T) {
	p := policy.NewDefaultCheckpointPolicy(policy.CheckpointConfig{IterationThreshold: 5})
	assert.True(t, p.ShouldCheckpoint(agent.FinalResponse{}, 5, agent.RequestContext{}))
	assert.False(t, p.ShouldCheckpoint(agent.FinalResponse{}, 4, agent.RequestContext{}))
}

func TestCheckpointResponseMarksCheckpointPayload(t *testing.T) {
	p := policy.NewDefaultCheckpointPolicy(policy.CheckpointConfig{})
	out := p.CreateCheckpointResponse(agent.FinalResponse{Operation: agent.OpDisplayMessage}, agent.RequestContext{})
	assert.Equal(t, true, out.Payload["checkpoint"])
}

func TestFollowUpPolicyStopsWhenComplete(t *testing.T) {
	p := policy.NewDefaultFollowUpPolicy(policy.FollowUpConfig{Enabled: true, StopOnCompletion: true}, detector())
	primary := agent.FinalResponse{Payload: map[string]any{"completed": true}}
	assert.False(t, p.ShouldFollowUp(primary, []agent.Phase{{}, {}}, 1, agent.RequestContext{}))
}

func TestFollowUpPolicyContinuesWhilePhasesRemain(t *testing.T) {
	p := policy.NewDefaultFollowUpPolicy(policy.FollowUpConfig{Enabled: true}, detector())
	phases := []agent.Phase{{}, {}, {}}
	assert.True(t, p.ShouldFollowUp(agent.FinalResponse{}, phases, 1, agent.RequestContext{}))
	assert.False(t, p.ShouldFollowUp(agent.FinalResponse{}, phases, 3, agent.RequestContext{}))
}

func TestFollowUpPolicyRespectsMaxRemainingPhases(t *testing.T) {
	p := policy.NewDefaultFollowUpPolicy(policy.FollowUpConfig{Enabled: true, MaxRemainingPhases: 1}, detector())
	phases := []agent.Phase{{}, {}, {}}
	assert.False(t, p.ShouldFollowUp(agent.FinalResponse{}, phases, 0, agent.RequestContext{}))
}
