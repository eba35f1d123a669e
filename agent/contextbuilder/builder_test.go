package contextbuilder_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/contextbuilder"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
)

type stubManifest struct {
	text string
	ok   bool
}

func (s stubManifest) GetSchemaManifest(string) (string, bool) { return s.text, s.ok }

func TestBuildOrchestratorContextNoHistory(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, nil)

	out := b.BuildOrchestratorContext("help me", []contextbuilder.CatalogEntry{
		{Name: "data-manager", Description: "handles data tasks"},
	})

	require.Contains(t, out, "== Available Managers ==")
	require.Contains(t, out, "data-manager: handles data tasks")
	require.Contains(t, out, "No prior conversation.")
	require.Contains(t, out, "help me")
}

func TestBuildOrchestratorContextWithHistoryIsBounded(t *testing.T) {
	store := memory.NewStore()
	for i := 0; i < 20; i++ {
		store.AppendConversation("job-1", "user", "turn")
	}
	b := contextbuilder.New("job-1", store, nil)

	out := b.BuildOrchestratorContext("latest", nil)
	require.Equal(t, contextbuilder.OrchestratorHistoryTurns, strings.Count(out, "USER: turn"))
	require.Contains(t, out, "No managers configured.")
}

func TestBuildManagerContextUsesManifestSource(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, stubManifest{text: "tables: orders, customers", ok: true})

	text, manifest := b.BuildManagerContext("ship the report", []contextbuilder.CatalogEntry{
		{Name: "worker-a", Description: "runs queries"},
	}, "")

	require.Equal(t, "tables: orders, customers", manifest)
	require.Contains(t, text, "== Director Goal ==")
	require.Contains(t, text, "tables: orders, customers")
	require.NotContains(t, text, "Previous Phase Outcome")
}

func TestBuildManagerContextIncludesPreviousOutcome(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, nil)

	text, manifest := b.BuildManagerContext("goal", nil, "phase one finished successfully")

	require.Equal(t, "", manifest)
	require.Contains(t, text, "== Previous Phase Outcome ==")
	require.Contains(t, text, "phase one finished successfully")
}

func TestBuildManagerContextTruncatesOversizedManifest(t *testing.T) {
	store := memory.NewStore()
	big := strings.Repeat("x", contextbuilder.ManagerManifestLimit+100)
	b := contextbuilder.New("job-1", store, stubManifest{text: big, ok: true})

	text, _ := b.BuildManagerContext("goal", nil, "")
	require.Contains(t, text, "... (truncated)")
	require.Less(t, len(text), len(big)+200)
}

func TestBuildWorkerExecutionContextWithScript(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, nil)

	order := b.BuildWorkerExecutionContext("do the thing", []agent.ScriptStep{
		{Name: "step1", Worker: "worker-a", ToolName: "calculator"},
	}, nil)

	require.Contains(t, order.AssembledContext, "== Manager Goal ==")
	require.Contains(t, order.AssembledContext, "== Script to Execute ==")
	require.Contains(t, order.AssembledContext, "calculator")
	require.NotContains(t, order.AssembledContext, "Manager Suggested Plan")
}

func TestBuildWorkerExecutionContextWithSuggestedPlan(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, nil)

	plan := &agent.StrategicPlan{PrimaryWorker: "worker-a", Rationale: "because"}
	order := b.BuildWorkerExecutionContext("goal", nil, plan)

	require.Contains(t, order.AssembledContext, "== Manager Suggested Plan ==")
	require.Contains(t, order.AssembledContext, "worker-a")
}

func TestBuildSynthesizerContext(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, nil)

	text := b.BuildSynthesizerContext("what happened?", map[string]any{"status": "ok"})
	require.Contains(t, text, "== User Request ==")
	require.Contains(t, text, "== Technical Outcome ==")
	require.Contains(t, text, "status")
}

func TestLatestUserMessage(t *testing.T) {
	store := memory.NewStore()
	store.AppendConversation("job-1", "assistant", "hi")
	store.AppendConversation("job-1", "user", "what's the weather")
	b := contextbuilder.New("job-1", store, nil)

	msg, ok := b.LatestUserMessage()
	require.True(t, ok)
	require.Equal(t, "what's the weather", msg)
}

func TestLatestUserMessageNoneFound(t *testing.T) {
	store := memory.NewStore()
	b := contextbuilder.New("job-1", store, nil)
	_, ok := b.LatestUserMessage()
	require.False(t, ok)
}
