package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/history"
)

func TestEmptyHistoryFiltersReturnEmpty(t *testing.T) {
	var empty []agent.Message
	assert.Empty(t, history.DefaultFilter{}.Filter(empty, history.FilterContext{}))
	assert.Empty(t, history.OrchestratorFilter{}.Filter(empty, history.FilterContext{}))
	assert.Empty(t, history.ManagerFilter{}.Filter(empty, history.FilterContext{HasPreviousPhaseID: true, PreviousPhaseID: 1}))
	assert.Empty(t, history.WorkerFilter{}.Filter(empty, history.FilterContext{}))
}

func TestWorkerFilterIsolatesCurrentTurn(t *testing.T) {
	full := []agent.Message{
		{Type: agent.TypeTask, Content: "turn1"},
		{Type: agent.TypeAction, Content: "a1"},
		{Type: agent.TypeObservation, Content: "o1"},
		{Type: agent.TypeFinal, Content: "f1"},
		{Type: agent.TypeTask, Content: "turn2"},
		{Type: agent.TypeAction, Content: "a2"},
	}
	got := history.WorkerFilter{}.Filter(full, history.FilterContext{})
	assert.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].Content)
}

func TestOrchestratorFilterKeepsLastNConversationTurns(t *testing.T) {
	var full []agent.Message
	for i := 0; i < 12; i++ {
		full = append(full, agent.Message{Type: agent.TypeUserMessage, Content: i})
	}
	got := history.OrchestratorFilter{}.Filter(full, history.FilterContext{})
	assert.Len(t, got, 8)
	assert.Equal(t, 4, got[0].Content)
}

func TestManagerFilterMatchesPhaseID(t *testing.T) {
	full := []agent.Message{
		(agent.Message{Type: agent.TypeSynthesis, Content: "phase0"}).WithPhase(0),
		(agent.Message{Type: agent.TypeSynthesis, Content: "phase1"}).WithPhase(1),
	}
	got := history.ManagerFilter{}.Filter(full, history.FilterContext{HasPreviousPhaseID: true, PreviousPhaseID: 1})
	assert.Len(t, got, 1)
	assert.Equal(t, "phase1", got[0].Content)
}

func TestFilteringAnAlreadyFilteredHistoryIsANoOp(t *testing.T) {
	// OrchestratorFilter and ManagerFilter are idempotent: their output is a
	// subset whose entries all still satisfy the same predicate. WorkerFilter
	// is a deliberate exception: it strips the "task" entry that anchors its
	// own turn boundary, so re-filtering its own output (which then contains
	// no task entry) yields empty, not the same slice. That asymmetry is
	// intentional: WorkerFilter's output is meant for one-shot prompt
	// assembly, never as input to another WorkerFilter pass.
	full := []agent.Message{
		{Type: agent.TypeUserMessage, Content: "u1"},
		{Type: agent.TypeUserMessage, Content: "u2"},
	}
	once := history.OrchestratorFilter{}.Filter(full, history.FilterContext{})
	twice := history.OrchestratorFilter{}.Filter(once, history.FilterContext{})
	assert.Equal(t, once, twice)

	phased := []agent.Message{
		(agent.Message{Type: agent.TypeSynthesis, Content: "phase1"}).WithPhase(1),
	}
	ctx := history.FilterContext{HasPreviousPhaseID: true, PreviousPhaseID: 1}
	onceM := history.ManagerFilter{}.Filter(phased, ctx)
	twiceM := history.ManagerFilter{}.Filter(onceM, ctx)
	assert.Equal(t, onceM, twiceM)
}
