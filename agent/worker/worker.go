// Package worker implements the Worker Agent: the plan/act/observe
// execution loop that turns planner output into executed tool calls,
// observations, and a terminal FinalResponse. A Worker is also a Delegate,
// so a manager can hand it tasks the same way it hands tasks to a nested
// manager.
package worker

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/history"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/jobstore"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/planner"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/policy"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/telemetry"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/toolerrors"
)

// Worker runs the plan/act/observe execution loop over a tool set. Every policy
// field is a pluggable interface; callers typically wire the
// agent/policy defaults but may substitute their own.
type Worker struct {
	Name    string
	Version string

	Planner  planner.Planner
	Memory   memory.View
	Tools    *tools.Registry
	EventBus hooks.Bus
	JobStore jobstore.Store

	Telemetry telemetry.Telemetry

	Completion     policy.CompletionDetector
	Termination    policy.TerminationPolicy
	LoopPrevention policy.LoopPreventionPolicy
	HITL           policy.HITLPolicy
	Checkpoint     policy.CheckpointPolicy

	LoopGuard policy.LoopGuardConfig

	// PolicyEngine is the central pre-execution deny filter. Nil means every
	// action is allowed.
	PolicyEngine PolicyEngine

	// EnvDefaults fills planner-omitted or placeholder argument values from
	// the process environment.
	EnvDefaults EnvDefaultFiller

	// ActionRateLimiter throttles concurrent tool-execution fan-out. Nil
	// disables rate limiting.
	ActionRateLimiter *rate.Limiter
}

// RunOptions carries the optional run parameters beyond task and progress
// handler.
type RunOptions struct {
	Script           []agent.ScriptStep
	ScriptMetadata   map[string]any
	ExecutionContext *ExecutionContext
	SuggestedPlan    *agent.StrategicPlan
}

func (w *Worker) actor() hooks.Actor {
	return hooks.Actor{Role: hooks.RoleWorker, Name: w.Name, Version: w.Version}
}

func (w *Worker) publish(ctx context.Context, progress ProgressHandler, event hooks.Event) {
	event.Actor = w.actor()
	if event.JobID == "" {
		if rc, ok := agent.FromContext(ctx); ok {
			event.JobID = rc.JobID
		}
	}
	if w.EventBus != nil {
		w.EventBus.Publish(ctx, event)
	}
	notify(ctx, progress, event)
}

// Run executes the plan/act/observe loop to completion and returns the
// resulting FinalResponse.
func (w *Worker) Run(ctx context.Context, task string, progress ProgressHandler, opts RunOptions) (agent.FinalResponse, error) {
	rc, _ := agent.FromContext(ctx)
	if opts.SuggestedPlan != nil {
		rc.StrategicPlan = opts.SuggestedPlan
	}
	rc = w.applyExecutionContext(rc, opts.ExecutionContext)
	ctx = agent.WithContext(ctx, rc)

	w.publish(ctx, progress, hooks.Event{Type: hooks.EventAgentStart, Payload: map[string]any{"task": task}})

	if w.Memory != nil {
		w.Memory.Add(agent.Message{Type: agent.TypeTask, Content: task})
		if len(opts.Script) > 0 {
			w.Memory.Add(agent.Message{Type: agent.TypeScriptInstruction, Content: map[string]any{
				"script":   opts.Script,
				"metadata": opts.ScriptMetadata,
			}})
		}
	}

	var (
		result agent.FinalResponse
		err    error
	)
	if len(opts.Script) > 0 {
		result, err = w.runScript(ctx, progress, opts.Script)
	} else {
		result, err = w.runPlannerLoop(ctx, progress, task)
	}

	status := hooks.StatusSuccess
	if err != nil {
		status = hooks.StatusError
	} else if result.Operation == agent.OpAwaitApproval {
		status = hooks.StatusPending
	} else if result.IsError() {
		status = hooks.StatusError
	}
	if err == nil && w.Memory != nil {
		w.Memory.Add(agent.Message{Type: agent.TypeFinal, Content: result})
	}
	w.publish(ctx, progress, hooks.Event{Type: hooks.EventAgentEnd}.WithResult(status, result.HumanReadableSummary))
	return result, err
}

// runPlannerLoop implements the planner-mode iteration steps.
func (w *Worker) runPlannerLoop(ctx context.Context, progress ProgressHandler, task string) (agent.FinalResponse, error) {
	rc, _ := agent.FromContext(ctx)
	completedTask := false

	for iteration := 1;; iteration++ {
		full := w.history()

		// Step 1: complete_task already executed as the most recent action:
		// extract the final response from the most recent observation and
		// stop re-planning.
		if completedTask {
			return w.lastObservationAsFinal(full), nil
		}

		outcome, planErr := w.Planner.Plan(ctx, task, full)
		if planErr != nil {
			return toolerrors.NewEngineErrorWithCause(agent.ErrPlanParse, "planner failed", planErr).Response(nil), nil
		}

		// Step 3: termination policy.
		if w.Termination != nil && w.Termination.ShouldTerminate(iteration, outcome, full, rc) {
			if outcome.IsFinal() {
				return *outcome.Final, nil
			}
			return w.synthesizeCompletion(full), nil
		}

		if outcome.IsFinal() {
			return *outcome.Final, nil
		}

		// Step 4: normalize and guard against re-executing complete_task.
		actions := outcome.Actions
		if containsCompleteTask(actions) && completedTask {
			return agent.FinalResponse{
				Operation:            agent.OpDisplayMessage,
				Payload:              map[string]any{"message": "task already completed"},
				HumanReadableSummary: "task already completed",
			}, nil
		}

		// Step 5: loop prevention over recent histories.
		if w.LoopPrevention != nil {
			actHist, obsHist := w.recentActionObservationHistory(full)
			if reason := w.LoopPrevention.DetectStagnation(actHist, obsHist, rc); reason != "" {
				return w.stagnationResponse(reason), nil
			}
		}

		// Step 6: emit action_planned for each action.
		for _, a := range actions {
			w.publish(ctx, progress, hooks.Event{Type: hooks.EventActionPlanned, Payload: map[string]any{
				"tool": a.ToolName, "args": a.ToolArgs,
			}})
		}

		// Step 7: HITL policy, checked before any action in the batch runs.
		if w.HITL != nil {
			for _, a := range actions {
				if w.HITL.RequiresApproval(a.ToolName, a.ToolArgs, rc) {
					return w.HITL.CreateApprovalRequest(a.ToolName, a.ToolArgs, rc), nil
				}
			}
		}

		// Step 8-9: execute all actions concurrently; collect results.
		outcomes, execErr := w.executeActions(ctx, progress, actions)
		if execErr != nil {
			return toolerrors.NewEngineErrorWithCause(agent.ErrExecution, "action execution failed", execErr).Response(nil), nil
		}

		// Step 10: append action/observation pairs; complete_task short-circuits.
		var lastResult any
		for _, o := range outcomes {
			if w.Memory != nil {
				w.Memory.Add(agent.Message{Type: agent.TypeAction, Tool: o.Action.ToolName, Args: o.Action.ToolArgs})
				w.Memory.Add(agent.Message{Type: agent.TypeObservation, Tool: o.Action.ToolName, Content: o.Result})
			}
			lastResult = o.Result
			if o.Action.IsCompleteTask() {
				completedTask = true
				return completeTaskFinal(o.Result), nil
			}
		}

		// Step 11: completion detector against the last result of the
		// batch. On completion the whole batch is aggregated into the
		// response, so a multi-action batch returns every result.
		full = w.history()
		if w.Completion != nil && w.Completion.IsComplete(lastResult, full, rc) {
			return aggregateBatchResults(outcomes), nil
		}

		// Step 12: re-check loop prevention now that results are in.
		if w.LoopPrevention != nil {
			actHist, obsHist := w.recentActionObservationHistory(full)
			if reason := w.LoopPrevention.DetectStagnation(actHist, obsHist, rc); reason != "" {
				return w.stagnationResponse(reason), nil
			}
		}

		// Step 13: checkpoint policy.
		candidate := aggregateBatchResults(outcomes)
		if w.Checkpoint != nil && w.Checkpoint.ShouldCheckpoint(candidate, iteration, rc) {
			return w.Checkpoint.CreateCheckpointResponse(candidate, rc), nil
		}

		// Step 14: any result still carrying await_approval surfaces as an
		// approval request (e.g. a tool itself returned one).
		if m, ok := lastResult.(map[string]any); ok {
			if await, ok := m["await_approval"].(bool); ok && await {
				return candidate, nil
			}
		}

		// Step 15: continue to the next iteration.
	}
}

func (w *Worker) history() []agent.Message {
	if w.Memory == nil {
		return nil
	}
	return history.WorkerFilter{}.Filter(w.Memory.GetHistory(), history.FilterContext{})
}

// recentActionObservationHistory extracts the current turn's action/
// observation entries, bounded by the loop-guard windows, for the loop
// prevention policy.
func (w *Worker) recentActionObservationHistory(full []agent.Message) ([]agent.Action, []any) {
	var actions []agent.Action
	var observations []any
	for _, m := range full {
		switch m.Type {
		case agent.TypeAction:
			actions = append(actions, agent.Action{ToolName: m.Tool, ToolArgs: m.Args})
		case agent.TypeObservation:
			observations = append(observations, m.Content)
		}
	}
	if w.LoopGuard.ActionWindow > 0 && len(actions) > w.LoopGuard.ActionWindow {
		actions = actions[len(actions)-w.LoopGuard.ActionWindow:]
	}
	if w.LoopGuard.ObservationWindow > 0 && len(observations) > w.LoopGuard.ObservationWindow {
		observations = observations[len(observations)-w.LoopGuard.ObservationWindow:]
	}
	return actions, observations
}

func (w *Worker) lastObservationAsFinal(full []agent.Message) agent.FinalResponse {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i].Type == agent.TypeObservation {
			return completeTaskFinal(full[i].Content)
		}
	}
	return agent.FinalResponse{Operation: agent.OpDisplayMessage, Payload: map[string]any{"message": "task complete"}, HumanReadableSummary: "task complete"}
}

func (w *Worker) synthesizeCompletion(full []agent.Message) agent.FinalResponse {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i].Type == agent.TypeObservation {
			return convertResultToFinal("", full[i].Content)
		}
	}
	return agent.FinalResponse{Operation: agent.OpDisplayMessage, Payload: map[string]any{"message": "done"}, HumanReadableSummary: "done"}
}

func (w *Worker) stagnationResponse(reason string) agent.FinalResponse {
	return toolerrors.NewEngineError(agent.ErrStagnation, reason).Response(map[string]any{"stagnation": true})
}

func containsCompleteTask(actions []agent.Action) bool {
	for _, a := range actions {
		if a.IsCompleteTask() {
			return true
		}
	}
	return false
}
