package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalArgsStableUnderKeyReordering(t *testing.T) {
	a := map[string]any{
		"table":   "users",
		"columns": []any{"id", "name"},
		"options": map[string]any{"limit": 10, "offset": 0},
	}
	b := map[string]any{
		"options": map[string]any{"offset": 0, "limit": 10},
		"columns": []any{"id", "name"},
		"table":   "users",
	}
	assert.Equal(t, CanonicalArgs(a), CanonicalArgs(b))
	assert.Equal(t, ActionSignature("add_column", a), ActionSignature("add_column", b))
}

func TestCanonicalArgsSortsNestedKeys(t *testing.T) {
	got := CanonicalArgs(map[string]any{"b": map[string]any{"z": 1, "a": 2}, "a": 1})
	assert.Equal(t, `{"a":1,"b":{"a":2,"z":1}}`, got)
}

func TestActionSignatureDistinguishesTools(t *testing.T) {
	args := map[string]any{"x": 1}
	assert.NotEqual(t, ActionSignature("tool_a", args), ActionSignature("tool_b", args))
}

func TestSnapshotIsolatesApprovalsAndPlan(t *testing.T) {
	plan := &StrategicPlan{Phases: []Phase{{Name: "p0", Worker: "w1"}}}
	rc := RequestContext{
		JobID:         "job-1",
		Approvals:     map[string]bool{"add_column": true},
		StrategicPlan: plan,
	}

	child := rc.Snapshot()
	child.Approvals["drop_column"] = true
	child.StrategicPlan.Phases[0].Worker = "w2"

	assert.False(t, rc.Approvals["drop_column"], "child approval write leaked into parent")
	assert.Equal(t, "w1", rc.StrategicPlan.Phases[0].Worker, "child phase mutation leaked into parent")
}

func TestWithSingleStepPlanHidesOuterPhases(t *testing.T) {
	rc := RequestContext{StrategicPlan: &StrategicPlan{
		PrimaryWorker: "w1",
		Phases: []Phase{
			{Name: "p0", Worker: "w1", Goals: "G1"},
			{Name: "p1", Worker: "w2", Goals: "G2"},
		},
	}}

	child := rc.WithSingleStepPlan(rc.StrategicPlan.Phases[1])
	require.NotNil(t, child.StrategicPlan)
	require.Len(t, child.StrategicPlan.Phases, 1)
	assert.Equal(t, "w2", child.StrategicPlan.Phases[0].Worker)
	assert.Equal(t, "w2", child.StrategicPlan.PrimaryWorker)

	require.Len(t, rc.StrategicPlan.Phases, 2, "outer plan must survive unchanged")
}

func TestErrorResponseMarksPayload(t *testing.T) {
	r := ErrorResponse(ErrStagnation, "stuck repeating search", map[string]any{"stagnation": true})
	assert.True(t, r.IsError())
	assert.Equal(t, string(ErrStagnation), r.Payload["error_type"])
	assert.Equal(t, true, r.Payload["stagnation"])
	assert.Equal(t, "stuck repeating search", r.HumanReadableSummary)
}

func TestWithPayloadDoesNotMutateOriginal(t *testing.T) {
	orig := FinalResponse{Operation: OpDisplayMessage, Payload: map[string]any{"message": "hi"}}
	derived := orig.WithPayload("checkpoint", true)

	assert.Equal(t, true, derived.Payload["checkpoint"])
	_, present := orig.Payload["checkpoint"]
	assert.False(t, present)
}

func TestWithPhaseTagsMessage(t *testing.T) {
	m := Message{Type: TypeSynthesis}.WithPhase(0)
	assert.True(t, m.HasPhaseID)
	assert.Equal(t, 0, m.PhaseID)
	assert.False(t, Message{Type: TypeSynthesis}.HasPhaseID)
}
