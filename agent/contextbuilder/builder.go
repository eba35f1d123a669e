// Package contextbuilder assembles the four fixed prompt templates used to
// brief orchestrators, managers, workers, and synthesizer agents. Each
// builder method renders plain text (or a small struct for the worker
// work-order) from a conversation store and the caller-supplied catalog and
// goal text; schema/manifest lookups are delegated to a pluggable
// ManifestSource so the engine carries no domain-specific data-model code.
package contextbuilder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
)

// CatalogEntry describes one manager or worker for the catalog blocks in the
// orchestrator briefing and manager blueprint.
type CatalogEntry struct {
	Name        string
	Description string
}

// ManifestSource supplies the data-model manifest text a manager blueprint
// embeds. Applications that have no data model to describe can leave this
// nil; GetSchemaManifest then reports ("", false).
type ManifestSource interface {
	GetSchemaManifest(jobID string) (string, bool)
}

// Builder assembles context bundles for one job, reading conversation
// history from store.
type Builder struct {
	JobID    string
	Store    *memory.Store
	Manifest ManifestSource

	manifestCache string
	manifestOK    bool
}

// New constructs a Builder for jobID backed by store. manifest may be nil.
func New(jobID string, store *memory.Store, manifest ManifestSource) *Builder {
	return &Builder{JobID: jobID, Store: store, Manifest: manifest}
}

// BuildOrchestratorContext assembles the orchestrator briefing: available
// managers, a bounded conversation summary, and the latest user request. It
// deliberately omits any detailed schema.
func (b *Builder) BuildOrchestratorContext(latestRequest string, managers []CatalogEntry) string {
	parts := []string{
		"== Available Managers ==",
		formatCatalog(managers, "No managers configured."),
		"",
		"== Conversation Summary ==",
		orDefault(b.conversationSummary(OrchestratorHistoryTurns), "No prior conversation."),
		"",
		"== Current User Request ==",
		orDefault(strings.TrimSpace(latestRequest), "(empty request)"),
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// BuildManagerContext assembles the manager blueprint: director goal, a
// size-capped data model manifest, the available workers/tools catalog, and
// an optional previous-phase outcome block. Returns the assembled text plus
// the untruncated manifest (for callers that want to cache or inspect it).
func (b *Builder) BuildManagerContext(phaseGoal string, workers []CatalogEntry, previousOutcome string) (string, string) {
	manifest, _ := b.schemaManifest()
	manifestDisplay := orDefault(manifest, "Manifest unavailable.")
	manifestDisplay = truncate(manifestDisplay, ManagerManifestLimit)

	parts := []string{
		"== Director Goal ==",
		orDefault(strings.TrimSpace(phaseGoal), "(no goal provided)"),
		"",
		"== Data Model Manifest ==",
		manifestDisplay,
		"",
		"== Available Workers & Tools ==",
		formatCatalog(workers, "No workers configured."),
	}
	if previousOutcome != "" {
		parts = append(parts, "", "== Previous Phase Outcome ==", previousOutcome)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), manifest
}

// WorkOrder is the worker work-order bundle: the manager's goal plus
// whichever of script/suggested-plan was supplied, and the fully assembled
// text a worker planner embeds in its prompt.
type WorkOrder struct {
	ManagerGoal      string
	ScriptSteps      []agent.ScriptStep
	SuggestedPlan    *agent.StrategicPlan
	AssembledContext string
}

// BuildWorkerExecutionContext assembles the worker work-order. At most one
// of scriptSteps or suggestedPlan is expected to be non-empty; both are
// JSON-serialized and truncated when present.
func (b *Builder) BuildWorkerExecutionContext(managerGoal string, scriptSteps []agent.ScriptStep, suggestedPlan *agent.StrategicPlan) WorkOrder {
	parts := []string{
		"== Manager Goal ==",
		orDefault(strings.TrimSpace(managerGoal), "(unspecified)"),
	}
	if len(scriptSteps) > 0 {
		if block := formatBlock("Script to Execute", scriptSteps); block != "" {
			parts = append(parts, block)
		}
	}
	if suggestedPlan != nil {
		if block := formatBlock("Manager Suggested Plan", suggestedPlan); block != "" {
			parts = append(parts, block)
		}
	}
	return WorkOrder{
		ManagerGoal:      managerGoal,
		ScriptSteps:      scriptSteps,
		SuggestedPlan:    suggestedPlan,
		AssembledContext: strings.TrimSpace(strings.Join(parts, "\n")),
	}
}

// BuildSynthesizerContext assembles the synthesizer press-release: the
// user's original request paired with the technical outcome produced by
// delegation.
func (b *Builder) BuildSynthesizerContext(latestRequest string, technicalResult any) string {
	var resultText string
	switch v := technicalResult.(type) {
	case string:
		resultText = v
	default:
		resultText = truncateJSON(v, 0)
	}
	parts := []string{
		"== User Request ==",
		orDefault(strings.TrimSpace(latestRequest), "(empty)"),
		"",
		"== Technical Outcome ==",
		resultText,
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// LatestUserMessage returns the most recent user-role conversation turn, or
// ("", false) when there is none.
func (b *Builder) LatestUserMessage() (string, bool) {
	turns := b.Store.ListConversation(b.JobID)
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content, true
		}
	}
	return "", false
}

func (b *Builder) conversationSummary(limit int) string {
	turns := b.Store.ListConversation(b.JobID)
	if len(turns) == 0 {
		return ""
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(t.Role), t.Content))
	}
	return strings.Join(lines, "\n")
}

func (b *Builder) schemaManifest() (string, bool) {
	if b.manifestOK {
		return b.manifestCache, true
	}
	if b.Manifest == nil {
		return "", false
	}
	manifest, ok := b.Manifest.GetSchemaManifest(b.JobID)
	if ok && manifest != "" {
		b.manifestCache = manifest
		b.manifestOK = true
	}
	return manifest, ok
}

func formatCatalog(entries []CatalogEntry, fallback string) string {
	if len(entries) == 0 {
		return fallback
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("- %s: %s", e.Name, e.Description)))
	}
	return strings.Join(lines, "\n")
}

func formatBlock(title string, payload any) string {
	if payload == nil {
		return ""
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return ""
	}
	block := truncate(string(b), WorkerScriptLimit)
	return strings.Join([]string{"", fmt.Sprintf("== %s ==", title), block}, "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
