package worker

import (
	"fmt"
	"sort"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// convertResultToFinal turns a raw tool result into an appropriate
// FinalResponse (table vs message vs generic). Only
// domain-agnostic branches are kept: a list of maps or a dict carrying a list
// field becomes a table; an already-FinalResponse-shaped or
// complete_task-shaped dict passes through as a message; anything else is
// stringified.
func convertResultToFinal(toolName string, result any) agent.FinalResponse {
	switch v := result.(type) {
	case agent.FinalResponse:
		return v
	case []any:
		if table, ok := listToTable(toolName, v); ok {
			return table
		}
		return agent.FinalResponse{
			Operation:            agent.OpDisplayMessage,
			Payload:              map[string]any{"message": fmt.Sprint(v)},
			HumanReadableSummary: fmt.Sprint(v),
		}
	case map[string]any:
		if op, ok := v["operation"].(string); ok {
			payload, _ := v["payload"].(map[string]any)
			summary, _ := v["human_readable_summary"].(string)
			return agent.FinalResponse{Operation: agent.Operation(op), Payload: payload, HumanReadableSummary: summary}
		}
		if _, ok := v["completed"]; ok {
			return completeTaskFinal(v)
		}
		if rows, found := extractTableRows(v); found {
			return listToTableFromRows(toolName, rows)
		}
		return agent.FinalResponse{
			Operation:            agent.OpDisplayMessage,
			Payload:              map[string]any{"message": fmt.Sprint(v)},
			HumanReadableSummary: fmt.Sprint(v),
		}
	case string:
		return agent.FinalResponse{
			Operation:            agent.OpDisplayMessage,
			Payload:              map[string]any{"message": v},
			HumanReadableSummary: v,
		}
	default:
		text := fmt.Sprint(v)
		return agent.FinalResponse{
			Operation:            agent.OpDisplayMessage,
			Payload:              map[string]any{"message": text},
			HumanReadableSummary: text,
		}
	}
}

// aggregateBatchResults converts a finished action batch into a single
// FinalResponse: a single-action batch converts its lone
// result as usual; a concurrent multi-action batch becomes
// one display_table with a row per action, so a two-way parallel fan-out
// surfaces both results rather than only the most recently zipped one.
func aggregateBatchResults(outcomes []agent.ActionOutcome) agent.FinalResponse {
	if len(outcomes) == 1 {
		return convertResultToFinal(outcomes[0].Action.ToolName, outcomes[0].Result)
	}
	headers := []string{"tool", "args", "result"}
	rows := make([][]any, 0, len(outcomes))
	tools := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []any{o.Action.ToolName, o.Action.ToolArgs, o.Result})
		tools = append(tools, o.Action.ToolName)
	}
	return agent.FinalResponse{
		Operation: agent.OpDisplayTable,
		Payload: map[string]any{
			"title":   fmt.Sprintf("%d combined results (%s)", len(outcomes), joinUnique(tools)),
			"headers": headers,
			"rows":    rows,
		},
		HumanReadableSummary: fmt.Sprintf("%d action(s) completed", len(outcomes)),
	}
}

func joinUnique(items []string) string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	joined := ""
	for i, it := range out {
		if i > 0 {
			joined += ", "
		}
		joined += it
	}
	return joined
}

// completeTaskFinal converts a complete_task tool result (or the
// observation it produced) into its FinalResponse, per the tool's
// documented output shape: { completed, summary, final_result,
// operation: "display_message", payload: {message}, human_readable_summary }.
func completeTaskFinal(result any) agent.FinalResponse {
	m, ok := result.(map[string]any)
	if !ok {
		text := fmt.Sprint(result)
		return agent.FinalResponse{Operation: agent.OpDisplayMessage, Payload: map[string]any{"message": text}, HumanReadableSummary: text}
	}
	if payload, ok := m["payload"].(map[string]any); ok {
		summary, _ := m["human_readable_summary"].(string)
		if summary == "" {
			summary, _ = m["summary"].(string)
		}
		return agent.FinalResponse{Operation: agent.OpDisplayMessage, Payload: payload, HumanReadableSummary: summary}
	}
	summary, _ := m["summary"].(string)
	message := summary
	if message == "" {
		if fr, ok := m["final_result"].(string); ok {
			message = fr
		}
	}
	return agent.FinalResponse{
		Operation:            agent.OpDisplayMessage,
		Payload:              map[string]any{"message": message, "final_result": m["final_result"]},
		HumanReadableSummary: summary,
	}
}

// listToTable renders a list of maps as a display_table, deriving headers
// from the union of keys across rows (sorted for determinism).
func listToTable(toolName string, rows []any) (agent.FinalResponse, bool) {
	maps, ok := asMapSlice(rows)
	if !ok || len(maps) == 0 {
		return agent.FinalResponse{}, false
	}
	return listToTableFromRows(toolName, maps), true
}

func listToTableFromRows(toolName string, maps []map[string]any) agent.FinalResponse {
	headers := sortedKeys(maps)
	tableRows := make([][]any, 0, len(maps))
	for _, row := range maps {
		r := make([]any, len(headers))
		for i, h := range headers {
			r[i] = row[h]
		}
		tableRows = append(tableRows, r)
	}
	title := "Results"
	if toolName != "" {
		title = fmt.Sprintf("%s results", toolName)
	}
	return agent.FinalResponse{
		Operation: agent.OpDisplayTable,
		Payload: map[string]any{
			"title":   title,
			"headers": headers,
			"rows":    tableRows,
		},
		HumanReadableSummary: fmt.Sprintf("%d row(s)", len(tableRows)),
	}
}

// extractTableRows looks for the first list-valued field in m, the
// "dict-with-list-field" branch of the source formatter.
func extractTableRows(m map[string]any) ([]map[string]any, bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if list, ok := m[k].([]any); ok {
			if maps, ok := asMapSlice(list); ok && len(maps) > 0 {
				return maps, true
			}
		}
	}
	return nil, false
}

func asMapSlice(items []any) ([]map[string]any, bool) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

// sortedKeys returns the sorted union of keys across every row, so table
// headers are stable regardless of map iteration order.
func sortedKeys(rows []map[string]any) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
