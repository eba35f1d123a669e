package worker

import "github.com/raviakasapu/auto-ai-agent-framework/agent"

// ExecutionContext is the work-order bundle a manager assembles (via
// agent/contextbuilder) before delegating to a worker. AssembledContext is
// the fully rendered text injected into memory/request context;
// DirectorGoal and SchemaManifest are carried separately so a worker-level
// planner can reference them without re-parsing AssembledContext.
type ExecutionContext struct {
	AssembledContext string
	DirectorGoal     string
	SchemaManifest   string
	ManagerGoal      string
}

// NewExecutionContextFromText builds an ExecutionContext from a plain
// assembled string, for callers (e.g. scripted demos) that have no
// structured goal/manifest to carry separately.
func NewExecutionContextFromText(text string) *ExecutionContext {
	return &ExecutionContext{AssembledContext: text}
}

// applyExecutionContext injects execCtx into memory (as an injected_context entry) and
// request context (director_context / data_model_context), returning the
// RequestContext the rest of Run should use. A nil execCtx is a no-op.
func (w *Worker) applyExecutionContext(rc agent.RequestContext, execCtx *ExecutionContext) agent.RequestContext {
	if execCtx == nil {
		return rc
	}
	if execCtx.AssembledContext != "" {
		rc.DirectorContext = execCtx.AssembledContext
	}
	if execCtx.SchemaManifest != "" {
		rc.DataModelContext = execCtx.SchemaManifest
	}
	if w.Memory != nil {
		w.Memory.Add(agent.Message{Type: agent.TypeInjectedContext, Content: execCtx})
	}
	return rc
}
