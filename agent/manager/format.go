package manager

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// previousPhaseSeparator is the literal block header phase-sequential
// execution appends to the next phase's task; tests and downstream parsers
// match it verbatim, so it must not change.
const previousPhaseSeparator = "\n\n--- Previous Phase Output ---\n"

// resultTruncateLimit caps a stringified FinalResponse payload embedded
// into a follow-up task or synthesizer context, mirroring the JIT context
// truncation the rest of the engine applies (agent/contextbuilder).
const resultTruncateLimit = 4000

// formatPreviousPhase renders result into the text block appended to the
// next phase's (or follow-up's) task.
func formatPreviousPhase(result agent.FinalResponse) string {
	return previousPhaseSeparator + formatResultBody(result)
}

func formatResultBody(result agent.FinalResponse) string {
	switch result.Operation {
	case agent.OpDisplayTable:
		return formatTable(result.Payload)
	case agent.OpDisplayMessage:
		if msg, ok := result.Payload["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if result.HumanReadableSummary != "" {
		return result.HumanReadableSummary
	}
	return truncateJSON(result.Payload)
}

// formatTable renders a display_table payload as aligned plain text.
func formatTable(payload map[string]any) string {
	title, _ := payload["title"].(string)
	headers, _ := payload["headers"].([]string)
	rows, _ := payload["rows"].([][]any)

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	if len(headers) > 0 {
		b.WriteString(strings.Join(headers, " | "))
		b.WriteString("\n")
	}
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncateJSON marshals v and truncates it at resultTruncateLimit, falling
// back to a plain %v rendering if it can't be marshaled.
func truncateJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	s := string(b)
	if len(s) <= resultTruncateLimit {
		return s
	}
	return s[:resultTruncateLimit] + "... (truncated)"
}
