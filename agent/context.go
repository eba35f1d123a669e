package agent

import "context"

// contextKey is an unexported type to avoid collisions with other packages'
// context keys, following the standard library's own convention.
type contextKey struct{ name string }

var requestContextKey = &contextKey{"agent.RequestContext"}

// RequestContext is the task-local scope that accumulates job_id,
// approvals, the active strategic plan, director/data-model context, and
// phase indices for a single run(task) invocation and its transitive child
// calls.
//
// RequestContext is carried as an explicit value rather than goroutine-local
// storage: it is passed through every run and plan call, and spawning a
// concurrent action snapshot-copies it into the child.
type RequestContext struct {
	JobID     string
	Approvals map[string]bool

	StrategicPlan    *StrategicPlan
	DirectorContext  string
	DataModelContext string

	OrchestratorPhaseIndex int
	ManagerStepIndex       int

	// LastTool records the most recently executed tool name, consulted by
	// the checkpoint policy's tool-based trigger.
	LastTool string
}

// Snapshot returns a deep-enough copy of rc suitable for handing to a
// concurrently executing child action or delegation, so that mutations
// performed by the child (e.g. updating OrchestratorPhaseIndex) never leak
// back into the parent or into sibling children running at the same time.
func (rc RequestContext) Snapshot() RequestContext {
	out := rc
	if rc.Approvals != nil {
		out.Approvals = make(map[string]bool, len(rc.Approvals))
		for k, v := range rc.Approvals {
			out.Approvals[k] = v
		}
	}
	if rc.StrategicPlan != nil {
		plan := *rc.StrategicPlan
		plan.Phases = append([]Phase(nil), rc.StrategicPlan.Phases...)
		out.StrategicPlan = &plan
	}
	return out
}

// WithSingleStepPlan returns a snapshot of rc whose StrategicPlan contains
// only the given phase, so a delegated worker sees a single-step plan and
// never the full outer plan.
func (rc RequestContext) WithSingleStepPlan(phase Phase) RequestContext {
	out := rc.Snapshot()
	out.StrategicPlan = &StrategicPlan{
		PrimaryWorker: phase.Worker,
		Phases:        []Phase{phase},
	}
	return out
}

// WithContext attaches rc to ctx, returning a derived context.Context.
func WithContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// FromContext retrieves the RequestContext previously attached with
// WithContext. ok is false if no RequestContext has been attached.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(RequestContext)
	return rc, ok
}
