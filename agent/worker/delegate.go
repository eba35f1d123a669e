package worker

import (
	"context"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
)

// ProgressHandler receives the same lifecycle/action events published on the
// event bus, but synchronously and scoped to one run call. Hosts that only
// care about one in-flight run (e.g. a request handler streaming to a
// client) can use this instead of subscribing to the process-wide Bus.
type ProgressHandler interface {
	OnEvent(ctx context.Context, event hooks.Event) error
}

// ProgressHandlerFunc adapts a plain function to ProgressHandler.
type ProgressHandlerFunc func(ctx context.Context, event hooks.Event) error

func (f ProgressHandlerFunc) OnEvent(ctx context.Context, event hooks.Event) error { return f(ctx, event) }

// notify delivers event to progress, swallowing its error the same way the
// event bus swallows subscriber errors.
func notify(ctx context.Context, progress ProgressHandler, event hooks.Event) {
	if progress == nil {
		return
	}
	_ = progress.OnEvent(ctx, event)
}

// Delegate is implemented by anything a manager can hand a task to: a Worker
// running tools directly, or a nested Manager running its own delegation.
type Delegate interface {
	RunDelegated(ctx context.Context, progress ProgressHandler, req DelegationRequest) (agent.FinalResponse, error)
}

// DelegationRequest is the universal shape a manager hands to a Delegate.
// Script/ExecutionContext/SuggestedPlan are consumed by worker delegates;
// StrategicPlan/DirectorContext are consumed by nested-manager delegates.
type DelegationRequest struct {
	Task string

	Script           []agent.ScriptStep
	ScriptMetadata   map[string]any
	ExecutionContext *ExecutionContext
	SuggestedPlan    *agent.StrategicPlan

	StrategicPlan   *agent.StrategicPlan
	DirectorContext string
}

// RunDelegated implements Delegate for a Worker, translating a
// DelegationRequest into a RunOptions call.
func (w *Worker) RunDelegated(ctx context.Context, progress ProgressHandler, req DelegationRequest) (agent.FinalResponse, error) {
	return w.Run(ctx, req.Task, progress, RunOptions{
		Script:           req.Script,
		ScriptMetadata:   req.ScriptMetadata,
		ExecutionContext: req.ExecutionContext,
		SuggestedPlan:    req.SuggestedPlan,
	})
}
