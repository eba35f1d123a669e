package worker

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/toolerrors"
)

// EnvDefaultFiller places environment-derived defaults into an action's
// args before execution: when the tool's schema expects a
// particular key, the planner omitted it or supplied a placeholder, and the
// environment carries a valid value". A nil filler is a no-op.
type EnvDefaultFiller func(toolName string, args map[string]any)

// EnvDefault builds an EnvDefaultFiller that, for any tool, fills argKey
// from the named environment variable whenever args[argKey] is absent or
// equal to one of placeholders (case-insensitive), e.g. a `model_dir` key
// left as the literal string "model_dir" by a planner.
func EnvDefault(argKey, envVar string, placeholders ...string) EnvDefaultFiller {
	return func(_ string, args map[string]any) {
		val, ok := os.LookupEnv(envVar)
		if !ok || strings.TrimSpace(val) == "" {
			return
		}
		current, present := args[argKey]
		if !present {
			args[argKey] = val
			return
		}
		currentStr, ok := current.(string)
		if !ok {
			return
		}
		for _, p := range placeholders {
			if strings.EqualFold(strings.TrimSpace(currentStr), p) {
				args[argKey] = val
				return
			}
		}
	}
}

// executeActions runs every action in the batch concurrently, zipping
// results back by index so observation attribution is correct regardless
// of completion order.
// Each goroutine receives a context carrying its own RequestContext
// snapshot, so child mutations never leak into siblings.
func (w *Worker) executeActions(ctx context.Context, progress ProgressHandler, actions []agent.Action) ([]agent.ActionOutcome, error) {
	outcomes := make([]agent.ActionOutcome, len(actions))
	var wg sync.WaitGroup
	wg.Add(len(actions))
	for i, a := range actions {
		i, a := i, a
		go func() {
			defer wg.Done()
			outcomes[i] = w.executeOne(ctx, progress, a)
		}()
	}
	wg.Wait()

	// Step 9: if any result is an infra-level exception (not a structured
	// tool-error observation), surface it as a run-level error.
	for _, o := range outcomes {
		if o.Err != nil {
			return nil, o.Err
		}
	}
	return outcomes, nil
}

// executeOne runs a single action: resolve tool, validate args, consult the
// policy engine, execute, and bookkeep.
// ValidationError/ToolNotFound/ExecutionError/
// PolicyDenied are all non-fatal: they are returned as structured
// observation payloads (Err left nil) so the planner can see and correct
// them next iteration. Only a genuine Go-level infrastructure failure (a
// cancelled rate-limiter wait) populates Err.
func (w *Worker) executeOne(ctx context.Context, progress ProgressHandler, a agent.Action) agent.ActionOutcome {
	rc, _ := agent.FromContext(ctx)
	rc = rc.Snapshot()
	ctx = agent.WithContext(ctx, rc)

	w.publish(ctx, progress, hooks.Event{Type: hooks.EventWorkerToolCall, Payload: map[string]any{
		"tool": a.ToolName, "args": a.ToolArgs,
	}})

	tool, ok := w.Tools.Lookup(a.ToolName)
	if !ok {
		return w.toolResultOutcome(ctx, progress, a, errorPayload(a.ToolName, agent.ErrToolNotFound, fmt.Sprintf("unknown tool %q", a.ToolName)))
	}

	if w.EnvDefaults != nil {
		w.EnvDefaults(a.ToolName, a.ToolArgs)
	}

	if err := tool.ArgsSchema().Validate(a.ToolArgs); err != nil {
		return w.toolResultOutcome(ctx, progress, a, errorPayload(a.ToolName, agent.ErrValidation, err.Error()))
	}

	if w.PolicyEngine != nil {
		if allowed, reason := w.PolicyEngine.Evaluate(a.ToolName, a.ToolArgs); !allowed {
			w.publish(ctx, progress, hooks.Event{Type: hooks.EventPolicyDenied, Payload: map[string]any{
				"tool": a.ToolName, "args": a.ToolArgs, "reason": reason,
			}})
			return w.toolResultOutcome(ctx, progress, a, errorPayload(a.ToolName, agent.ErrPolicyDenied, reason, map[string]any{"policy_denied": true}))
		}
	}

	if w.ActionRateLimiter != nil {
		if err := w.ActionRateLimiter.Wait(ctx); err != nil {
			return agent.ActionOutcome{Action: a, Err: fmt.Errorf("worker: rate limiter wait: %w", err)}
		}
	}

	result, err := tool.Execute(ctx, a.ToolArgs)
	if err != nil {
		engErr := toolerrors.NewEngineErrorWithCause(agent.ErrExecution, err.Error(), err)
		w.publish(ctx, progress, hooks.Event{Type: hooks.EventError, Payload: map[string]any{
			"tool": a.ToolName, "error": engErr.Error(),
		}})
		return w.toolResultOutcome(ctx, progress, a, errorPayload(a.ToolName, engErr.Kind, engErr.Error()))
	}

	if w.JobStore != nil && rc.JobID != "" {
		sig := agent.ActionSignature(a.ToolName, a.ToolArgs)
		if bumpErr := w.JobStore.AddExecutedAction(ctx, rc.JobID, sig); bumpErr != nil && w.Telemetry.Logger != nil {
			w.Telemetry.Logger.Warn(ctx, "worker: record executed action failed", "job_id", rc.JobID, "tool", a.ToolName, "error", bumpErr)
		}
	}

	return w.toolResultOutcome(ctx, progress, a, result)
}

func (w *Worker) toolResultOutcome(ctx context.Context, progress ProgressHandler, a agent.Action, result any) agent.ActionOutcome {
	status := hooks.StatusSuccess
	if m, ok := result.(map[string]any); ok {
		if errFlag, ok := m["error"].(bool); ok && errFlag {
			status = hooks.StatusError
		}
	}
	w.publish(ctx, progress, hooks.Event{Type: hooks.EventWorkerToolResult, Payload: map[string]any{
		"tool": a.ToolName, "result": result,
	}}.WithResult(status, ""))
	w.publish(ctx, progress, hooks.Event{Type: hooks.EventActionExecuted, Payload: map[string]any{
		"tool": a.ToolName,
	}}.WithResult(status, ""))
	return agent.ActionOutcome{Action: a, Result: result}
}

// errorPayload builds the structured error payload actions observe:
// { success: false, error: true, error_message, error_type, tool }.
func errorPayload(toolName string, kind agent.ErrorKind, message string, extra ...map[string]any) map[string]any {
	out := map[string]any{
		"success":       false,
		"error":         true,
		"error_message": message,
		"error_type":    string(kind),
		"tool":          toolName,
	}
	for _, m := range extra {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
