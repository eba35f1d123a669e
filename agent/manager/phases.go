package manager

import (
	"context"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// phaseOutcome pairs an executed phase with its index and result, used only
// to build the post-loop aggregation.
type phaseOutcome struct {
	phase  agent.Phase
	index  int
	result agent.FinalResponse
}

// runPhaseSequential runs a strategic plan's phases strictly in order,
// ignoring any PrimaryWorker override. Each phase after the first sees the
// previous phase's formatted output appended to its goal text.
func (m *Manager) runPhaseSequential(ctx context.Context, progress worker.ProgressHandler, task string, plan *agent.StrategicPlan) (agent.FinalResponse, error) {
	outerRC, _ := agent.FromContext(ctx)

	var outcomes []phaseOutcome
	previousOutcome := ""

	for i, phase := range plan.Phases {
		// Step 1: skip if the worker isn't in this manager's worker set.
		if _, ok := m.Workers[phase.Worker]; !ok {
			continue
		}

		// Step 2: compose the phase task.
		phaseTask := phase.Goals
		if phaseTask == "" {
			phaseTask = task
		}
		if i > 0 && previousOutcome != "" {
			phaseTask += previousOutcome
		}

		// Step 3: update request context with the phase index, selecting
		// orchestrator vs manager event/field names.
		phaseRC := outerRC
		startEvent, endEvent := hooks.EventManagerStepStart, hooks.EventManagerStepEnd
		if m.IsOrchestrator {
			phaseRC.OrchestratorPhaseIndex = i
			startEvent, endEvent = hooks.EventOrchestratorPhaseStart, hooks.EventOrchestratorPhaseEnd
		} else {
			phaseRC.ManagerStepIndex = i
		}
		ctx = agent.WithContext(ctx, phaseRC)

		m.publish(ctx, progress, hooks.Event{Type: startEvent, Payload: map[string]any{"phase": i, "worker": phase.Worker}})

		// Step 4: delegate from phaseRC so the worker's request context
		// carries the phase index; ctx is reset to outerRC once the
		// delegation returns.
		phaseCopy := phase
		result, err := m.delegateWorker(ctx, progress, phase.Worker, phaseTask, &phaseCopy, phaseRC)
		ctx = agent.WithContext(ctx, outerRC)

		// Step 5: emit the phase-end event.
		m.publish(ctx, progress, hooks.Event{Type: endEvent, Payload: map[string]any{"phase": i, "worker": phase.Worker}}.WithResult(statusFor(result, err), result.HumanReadableSummary))

		if err != nil {
			return agent.FinalResponse{}, err
		}
		// Step 6: bubble up an approval request immediately.
		if result.Operation == agent.OpAwaitApproval {
			return result, nil
		}

		outcomes = append(outcomes, phaseOutcome{phase: phase, index: i, result: result})
		previousOutcome = formatPreviousPhase(result)

		if m.JobStore != nil && outerRC.JobID != "" {
			if _, berr := m.JobStore.BumpPhase(ctx, outerRC.JobID, m.Name); berr != nil && m.Telemetry.Logger != nil {
				m.Telemetry.Logger.Warn(ctx, "manager: bump phase failed", "manager", m.Name, "error", berr)
			}
		}
	}

	if len(outcomes) == 0 {
		return agent.ErrorResponse(agent.ErrExecution, "no phase had a recognized worker", nil), nil
	}

	finalPhaseID := outcomes[len(outcomes)-1].index
	aggregated := aggregatePhaseOutcomes(outcomes)

	latest := task
	if m.ContextBuilder != nil {
		if msg, ok := m.ContextBuilder.LatestUserMessage(); ok {
			latest = msg
		}
	}
	return m.finalize(ctx, progress, latest, aggregated, finalPhaseID)
}

// aggregatePhaseOutcomes collapses a completed phase run into one
// FinalResponse: a single phase passes its result through unchanged; more
// than one becomes a display_table with a row per phase.
func aggregatePhaseOutcomes(outcomes []phaseOutcome) agent.FinalResponse {
	if len(outcomes) == 1 {
		return outcomes[0].result
	}
	headers := []string{"phase", "worker", "summary"}
	rows := make([][]any, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []any{o.index, o.phase.Worker, o.result.HumanReadableSummary})
	}
	return agent.FinalResponse{
		Operation: agent.OpDisplayTable,
		Payload: map[string]any{
			"title":   "Phase results",
			"headers": headers,
			"rows":    rows,
		},
		HumanReadableSummary: "all phases completed",
	}
}
