package contextbuilder

import "encoding/json"

// Truncation limits per assembly template. These cap how much of each
// JSON-serialized or free-text block is assembled into a prompt.
const (
	// OrchestratorHistoryTurns bounds how many conversation turns the
	// orchestrator briefing's conversation summary includes.
	OrchestratorHistoryTurns = 8

	// ManagerManifestLimit caps the manager blueprint's data model manifest.
	ManagerManifestLimit = 6000

	// WorkerScriptLimit caps the worker work-order's script/suggested-plan
	// JSON block.
	WorkerScriptLimit = 4000
)

const truncationMarker = "... (truncated)"

// truncate caps s at limit bytes, appending a marker when it cuts content
// off. limit <= 0 disables truncation.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	if limit <= len(truncationMarker) {
		return s[:limit]
	}
	return s[:limit-len(truncationMarker)] + truncationMarker
}

// truncateJSON marshals v and truncates the result, falling back to the
// "<unserializable>" placeholder on marshal failure so a bad value never
// aborts context assembly.
func truncateJSON(v any, limit int) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return truncate("<unserializable>", limit)
	}
	return truncate(string(b), limit)
}
