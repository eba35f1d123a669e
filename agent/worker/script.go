package worker

import (
	"context"
	"fmt"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
)

// runScript implements script mode: execute script steps in order,
// stopping at the first failure, and aggregate into a display_message
// result carrying overall_status and per-step records.
func (w *Worker) runScript(ctx context.Context, progress ProgressHandler, script []agent.ScriptStep) (agent.FinalResponse, error) {
	records := make([]map[string]any, 0, len(script))
	overallStatus := "SUCCESS"

	for _, step := range script {
		a := agent.Action{ToolName: step.ToolName, ToolArgs: step.Args}
		w.publish(ctx, progress, hooks.Event{Type: hooks.EventActionPlanned, Payload: map[string]any{
			"tool": a.ToolName, "args": a.ToolArgs, "step": step.Name,
		}})

		outcome := w.executeOne(ctx, progress, a)
		if outcome.Err != nil {
			return agent.FinalResponse{}, outcome.Err
		}

		if w.Memory != nil {
			w.Memory.Add(agent.Message{Type: agent.TypeAction, Tool: a.ToolName, Args: a.ToolArgs})
			w.Memory.Add(agent.Message{Type: agent.TypeObservation, Tool: a.ToolName, Content: outcome.Result})
		}

		failed := stepFailed(outcome.Result)
		record := map[string]any{
			"name":   step.Name,
			"worker": step.Worker,
			"tool":   step.ToolName,
			"result": outcome.Result,
		}
		if failed {
			record["status"] = "failed"
		} else {
			record["status"] = "succeeded"
		}
		records = append(records, record)

		if failed {
			overallStatus = "FAILED"
			break
		}
	}

	return agent.FinalResponse{
		Operation: agent.OpDisplayMessage,
		Payload: map[string]any{
			"overall_status": overallStatus,
			"script_steps":   records,
		},
		HumanReadableSummary: fmt.Sprintf("script completed with status %s (%d step(s) run)", overallStatus, len(records)),
	}, nil
}

func stepFailed(result any) bool {
	m, ok := result.(map[string]any)
	if !ok {
		return false
	}
	if errFlag, ok := m["error"].(bool); ok && errFlag {
		return true
	}
	if successFlag, ok := m["success"].(bool); ok && !successFlag {
		return true
	}
	return false
}
