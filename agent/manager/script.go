package manager

import (
	"context"
	"fmt"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// scriptSegment groups consecutive steps that target the same worker in the
// same execution mode, so a run of "direct" steps for one worker becomes a
// single delegation instead of one per step.
type scriptSegment struct {
	worker string
	mode   agent.ExecutionMode
	steps  []agent.ScriptStep
}

// segmentScript groups steps into scriptSegments, preserving order.
func segmentScript(steps []agent.ScriptStep) []scriptSegment {
	var segments []scriptSegment
	for _, step := range steps {
		if n := len(segments); n > 0 {
			last := &segments[n-1]
			if last.worker == step.Worker && last.mode == step.ExecutionMode {
				last.steps = append(last.steps, step)
				continue
			}
		}
		segments = append(segments, scriptSegment{worker: step.Worker, mode: step.ExecutionMode, steps: []agent.ScriptStep{step}})
	}
	return segments
}

// stepsToPhases converts a guided segment's steps into the phase list a
// worker's own planner is handed as a suggested plan.
func stepsToPhases(steps []agent.ScriptStep) []agent.Phase {
	phases := make([]agent.Phase, len(steps))
	for i, step := range steps {
		phases[i] = agent.Phase{Name: step.Name, Worker: step.Worker, Goals: step.Notes}
	}
	return phases
}

// validateScript checks every step names a worker this manager knows and,
// for direct-mode steps, that the target worker exposes the named tool with
// args matching its schema.
func (m *Manager) validateScript(steps []agent.ScriptStep) error {
	for _, step := range steps {
		w, ok := m.Workers[step.Worker]
		if !ok {
			return fmt.Errorf("manager %s: script step %q targets unknown worker %q", m.Name, step.Name, step.Worker)
		}
		if step.ExecutionMode != agent.ExecDirect {
			continue
		}
		ww, ok := w.(*worker.Worker)
		if !ok {
			return fmt.Errorf("manager %s: script step %q requests direct mode but worker %q is not tool-addressable", m.Name, step.Name, step.Worker)
		}
		tool, ok := ww.Tools.Lookup(step.ToolName)
		if !ok {
			return fmt.Errorf("manager %s: script step %q: worker %q has no tool %q", m.Name, step.Name, step.Worker, step.ToolName)
		}
		if err := tool.ArgsSchema().Validate(step.Args); err != nil {
			return fmt.Errorf("manager %s: script step %q: %w", m.Name, step.Name, err)
		}
	}
	return nil
}

// runManagerScript implements manager-level script mode: a
// deterministic, pre-validated sequence of steps grouped into per-worker
// segments and delegated in order, aborting at the first failed segment.
func (m *Manager) runManagerScript(ctx context.Context, progress worker.ProgressHandler, steps []agent.ScriptStep, metadata map[string]any) (agent.FinalResponse, error) {
	if len(steps) == 0 {
		return agent.ErrorResponse(agent.ErrValidation, "script has zero steps", nil), nil
	}
	if err := m.validateScript(steps); err != nil {
		return agent.ErrorResponse(agent.ErrValidation, err.Error(), nil), nil
	}

	outerRC, _ := agent.FromContext(ctx)

	m.publish(ctx, progress, hooks.Event{Type: hooks.EventManagerScriptPlanned, Payload: map[string]any{
		"steps": len(steps), "metadata": metadata,
	}})

	segments := segmentScript(steps)
	sections := make([]map[string]any, 0, len(segments))
	overallStatus := "SUCCESS"

	for i, seg := range segments {
		w, ok := m.Workers[seg.worker]
		if !ok {
			return agent.FinalResponse{}, fmt.Errorf("manager %s: script segment %d targets unknown worker %q", m.Name, i, seg.worker)
		}

		childRC := outerRC.Snapshot()
		childCtx := agent.WithContext(ctx, childRC)

		req := worker.DelegationRequest{Task: segmentTask(seg)}
		switch seg.mode {
		case agent.ExecDirect:
			req.Script = seg.steps
		default:
			req.SuggestedPlan = &agent.StrategicPlan{Phases: stepsToPhases(seg.steps)}
		}

		result, err := w.RunDelegated(childCtx, progress, req)
		if err != nil {
			return agent.FinalResponse{}, fmt.Errorf("manager %s: script segment %d: %w", m.Name, i, err)
		}
		if result.Operation == agent.OpAwaitApproval {
			return result, nil
		}

		status := "succeeded"
		if result.IsError() {
			status = "failed"
		}
		sections = append(sections, map[string]any{
			"worker": seg.worker,
			"mode":   seg.mode,
			"result": result,
			"status": status,
		})
		if status == "failed" {
			overallStatus = "FAILED"
			break
		}
	}

	aggregated := agent.FinalResponse{
		Operation: agent.OpDisplayMessage,
		Payload: map[string]any{
			"overall_status": overallStatus,
			"sections":       sections,
		},
		HumanReadableSummary: fmt.Sprintf("script completed with status %s (%d segment(s) run)", overallStatus, len(sections)),
	}
	if overallStatus == "FAILED" {
		return aggregated, nil
	}

	latest := ""
	if m.ContextBuilder != nil {
		latest, _ = m.ContextBuilder.LatestUserMessage()
	}
	return m.finalize(ctx, progress, latest, aggregated, 0)
}

// segmentTask produces a human-readable task string for a script segment,
// used only as the delegation's Task field (the authoritative instructions
// live in the segment's steps).
func segmentTask(seg scriptSegment) string {
	if len(seg.steps) == 1 {
		return seg.steps[0].Notes
	}
	task := fmt.Sprintf("execute %d scripted step(s)", len(seg.steps))
	for _, s := range seg.steps {
		if s.Notes != "" {
			task += ": " + s.Notes
			break
		}
	}
	return task
}
