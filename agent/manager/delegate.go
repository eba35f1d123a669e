package manager

import (
	"context"
	"fmt"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// statusFor normalizes a delegation's outcome into the event status
// enum, shared by every delegation path (phase, parallel, follow-up,
// script).
func statusFor(result agent.FinalResponse, err error) hooks.Status {
	switch {
	case err != nil:
		return hooks.StatusError
	case result.Operation == agent.OpAwaitApproval:
		return hooks.StatusPending
	case result.IsError():
		return hooks.StatusError
	default:
		return hooks.StatusSuccess
	}
}

// delegateWorker runs one delegation to the named worker: it assembles the
// manager-blueprint text for the task (BuildManagerContext) and carries it
// as DirectorContext on both the request context and the request; no worker
// ExecutionContext (work-order) is built or passed. It swaps in a
// single-step plan when phase is non-nil so
// the worker never sees the outer plan, persists a pending
// action on approval, and restores the outer request context before
// returning so whatever runs next at this tier sees the manager's own view.
func (m *Manager) delegateWorker(ctx context.Context, progress worker.ProgressHandler, workerName, task string, phase *agent.Phase, outerRC agent.RequestContext) (agent.FinalResponse, error) {
	w, ok := m.Workers[workerName]
	if !ok {
		return agent.FinalResponse{}, fmt.Errorf("manager %s: unknown worker %q", m.Name, workerName)
	}

	var delegateRC agent.RequestContext
	if phase != nil {
		delegateRC = outerRC.WithSingleStepPlan(*phase)
	} else {
		delegateRC = outerRC.Snapshot()
	}

	var assembled string
	if m.ContextBuilder != nil {
		assembled, _ = m.ContextBuilder.BuildManagerContext(task, nil, "")
		delegateRC.DirectorContext = assembled
	}
	ctx = agent.WithContext(ctx, delegateRC)

	if m.Memory != nil {
		m.Memory.Add(agent.Message{Type: agent.TypeDelegation, Content: task, FromManager: m.Name, FromWorker: workerName})
	}

	m.publish(ctx, progress, hooks.Event{Type: hooks.EventDelegationChosen, Payload: map[string]any{
		"worker": workerName, "task": task,
	}})

	req := worker.DelegationRequest{
		Task:            task,
		StrategicPlan:   delegateRC.StrategicPlan,
		DirectorContext: assembled,
	}
	result, err := w.RunDelegated(ctx, progress, req)

	// Restore the outer plan/context: whatever runs next at this tier (the
	// next phase, a sibling follow-up) must not see this delegation's
	// single-step plan.
	ctx = agent.WithContext(ctx, outerRC)

	if err == nil && result.Operation == agent.OpAwaitApproval && m.JobStore != nil && outerRC.JobID != "" {
		tool, _ := result.Payload["tool"].(string)
		args, _ := result.Payload["args"].(map[string]any)
		pending := agent.PendingAction{Worker: workerName, Tool: tool, Args: args, Manager: m.Name}
		if perr := m.JobStore.SavePendingAction(ctx, outerRC.JobID, pending); perr != nil && m.Telemetry.Logger != nil {
			m.Telemetry.Logger.Warn(ctx, "manager: persist pending action failed", "manager", m.Name, "error", perr)
		}
	}

	m.publish(ctx, progress, hooks.Event{Type: hooks.EventDelegationExecuted, Payload: map[string]any{
		"worker": workerName,
	}}.WithResult(statusFor(result, err), result.HumanReadableSummary))

	return result, err
}
