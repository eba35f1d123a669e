// Package manager implements the Manager Agent: the delegation engine
// that routes a task to workers or child managers, either phase by
// phase, in a parallel fan-out, through a deterministic script, or as a
// single delegation with follow-ups, then optionally synthesizes the
// aggregated result. A Manager is itself a worker.Delegate, so an
// orchestrator's "workers" may themselves be Managers.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/contextbuilder"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/jobstore"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/planner"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/policy"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/telemetry"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// Reserved tool names a manager-level planner uses to carry a structured
// routing directive rather than a literal tool invocation. Planners are
// opaque Go collaborators, so these directives pass a live Go value
// through Action.ToolArgs rather than a JSON-serializable one.
const (
	// ActionStrategicPlan carries ToolArgs["plan"] = *agent.StrategicPlan,
	// requesting phase-sequential execution.
	ActionStrategicPlan = planner.ActionStrategicPlan
	// ActionScript carries ToolArgs["steps"] = []agent.ScriptStep and
	// optionally ToolArgs["metadata"] = map[string]any, requesting
	// manager-level script mode.
	ActionScript = planner.ActionScript
)

// SynthesisGateway reshapes an aggregated delegation result into a
// user-facing FinalResponse, the lightweight alternative to a full
// Synthesizer agent.
type SynthesisGateway interface {
	Reshape(ctx context.Context, aggregated agent.FinalResponse, latestUserRequest string) (agent.FinalResponse, error)
}

// Manager delegates tasks to workers or child managers rather than running
// tools directly.
type Manager struct {
	Name    string
	Version string

	// IsOrchestrator marks the top-level manager whose workers are
	// themselves managers. It selects between
	// orchestrator_phase_*/OrchestratorPhaseIndex and
	// manager_step_*/ManagerStepIndex event names and request-context
	// fields.
	IsOrchestrator bool

	Planner planner.Planner
	Memory  memory.View
	Workers map[string]worker.Delegate
	// Tools are manager-level tools the planner may target directly,
	// distinct from delegating to a worker.
	Tools *tools.Registry

	JobStore       jobstore.Store
	EventBus       hooks.Bus
	ContextBuilder *contextbuilder.Builder
	// Catalog describes this manager's workers (or, for an orchestrator,
	// its managers) for context-builder briefings.
	Catalog []contextbuilder.CatalogEntry

	// Synthesizer, if set, is run after phase-sequential aggregation to
	// produce a human-facing roll-up.
	Synthesizer worker.Delegate
	// SynthesisGateway is the lighter-weight alternative, consulted only
	// when Synthesizer is nil or declines to produce a full result.
	SynthesisGateway SynthesisGateway

	Completion policy.CompletionDetector
	FollowUp   policy.FollowUpPolicy

	Telemetry telemetry.Telemetry
}

func (m *Manager) actor() hooks.Actor {
	return hooks.Actor{Role: hooks.RoleManager, Name: m.Name, Version: m.Version}
}

func (m *Manager) publish(ctx context.Context, progress worker.ProgressHandler, event hooks.Event) {
	event.Actor = m.actor()
	if event.JobID == "" {
		if rc, ok := agent.FromContext(ctx); ok {
			event.JobID = rc.JobID
		}
	}
	if m.EventBus != nil {
		m.EventBus.Publish(ctx, event)
	}
	if progress != nil {
		_ = progress.OnEvent(ctx, event)
	}
}

// ensureJob persists a job record for jobID, matching the source
// framework's FileJobStore.create_job idempotence: GetJob first, only
// CreateJob when absent. A nested manager's Run is called many times over
// one job's lifetime (once per phase's delegation target); naively calling
// CreateJob every time would overwrite ExecutedActions and prior plans
// built up by sibling phases, since the in-memory Store's CreateJob is not
// itself idempotent.
func (m *Manager) ensureJob(ctx context.Context, jobID string) error {
	if m.JobStore == nil || jobID == "" {
		return nil
	}
	if _, err := m.JobStore.GetJob(ctx, jobID); err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			return m.JobStore.CreateJob(ctx, jobID)
		}
		return err
	}
	return nil
}

// Run executes one delegation round: run(task, progress_handler,
// strategic_plan?, context?) → FinalResponse.
func (m *Manager) Run(ctx context.Context, task string, progress worker.ProgressHandler, strategicPlan *agent.StrategicPlan, directorContext string) (agent.FinalResponse, error) {
	rc, _ := agent.FromContext(ctx)

	if err := m.ensureJob(ctx, rc.JobID); err != nil {
		return agent.FinalResponse{}, fmt.Errorf("manager %s: ensure job: %w", m.Name, err)
	}

	m.publish(ctx, progress, hooks.Event{Type: hooks.EventManagerStart, Payload: map[string]any{"task": task}})

	if m.Memory != nil {
		m.Memory.Add(agent.Message{Type: agent.TypeTask, Content: task})
	}

	if strategicPlan != nil {
		rc.StrategicPlan = strategicPlan
		if m.Memory != nil {
			m.Memory.Add(agent.Message{Type: agent.TypeStrategicPlan, Content: strategicPlan})
		}
		if m.JobStore != nil && rc.JobID != "" {
			var persistErr error
			if m.IsOrchestrator {
				persistErr = m.JobStore.UpdateOrchestratorPlan(ctx, rc.JobID, *strategicPlan)
			} else {
				persistErr = m.JobStore.UpdateManagerPlan(ctx, rc.JobID, m.Name, *strategicPlan)
			}
			if persistErr != nil && m.Telemetry.Logger != nil {
				m.Telemetry.Logger.Warn(ctx, "manager: persist plan failed", "manager", m.Name, "error", persistErr)
			}
		}
	}

	assembled := directorContext
	if assembled == "" && m.ContextBuilder != nil {
		assembled = m.buildOwnContext(task)
	}
	if assembled != "" {
		rc.DirectorContext = assembled
		if m.Memory != nil {
			m.Memory.Add(agent.Message{Type: agent.TypeDirectorContext, Content: assembled})
		}
	}
	ctx = agent.WithContext(ctx, rc)

	result, err := m.dispatch(ctx, progress, task, rc)

	status := hooks.StatusSuccess
	if err != nil {
		status = hooks.StatusError
	} else if result.Operation == agent.OpAwaitApproval {
		status = hooks.StatusPending
	} else if result.IsError() {
		status = hooks.StatusError
	}
	m.publish(ctx, progress, hooks.Event{Type: hooks.EventManagerEnd}.WithResult(status, result.HumanReadableSummary))
	return result, err
}

func (m *Manager) buildOwnContext(task string) string {
	if m.IsOrchestrator {
		latest := task
		if msg, ok := m.ContextBuilder.LatestUserMessage(); ok {
			latest = msg
		}
		return m.ContextBuilder.BuildOrchestratorContext(latest, m.Catalog)
	}
	text, _ := m.ContextBuilder.BuildManagerContext(task, m.Catalog, "")
	return text
}

// dispatch selects the delegation mode: an explicit strategic plan with
// phases bypasses the planner entirely (the manager's job is to execute a
// plan it has already been handed, not re-decide one; this is the
// pragmatic reading of "phase-sequential execution (when the action's
// args include a strategic plan with phases" for a Manager invoked
// directly with one). Otherwise the planner is
// consulted and its outcome shape selects the delegation mode.
func (m *Manager) dispatch(ctx context.Context, progress worker.ProgressHandler, task string, rc agent.RequestContext) (agent.FinalResponse, error) {
	if rc.StrategicPlan != nil && len(rc.StrategicPlan.Phases) > 0 {
		return m.runPhaseSequential(ctx, progress, task, rc.StrategicPlan)
	}
	if rc.StrategicPlan != nil && rc.StrategicPlan.PrimaryWorker == "" && len(rc.StrategicPlan.Phases) == 0 {
		return agent.ErrorResponse(agent.ErrValidation, "strategic plan has zero phases and no primary worker", nil), nil
	}

	if m.Planner == nil {
		return agent.ErrorResponse(agent.ErrExecution, "manager has no planner configured", nil), nil
	}
	outcome, err := m.Planner.Plan(ctx, task, m.history())
	if err != nil {
		return agent.ErrorResponse(agent.ErrPlanParse, fmt.Sprintf("planner failed: %v", err), nil), nil
	}

	if outcome.IsFinal() {
		return *outcome.Final, nil
	}

	for _, a := range outcome.Actions {
		m.publish(ctx, progress, hooks.Event{Type: hooks.EventDelegationPlanned, Payload: map[string]any{
			"target": a.ToolName,
		}})
	}

	switch {
	case len(outcome.Actions) > 1:
		return m.runParallelDelegation(ctx, progress, outcome.Actions)

	case len(outcome.Actions) == 1:
		a := outcome.Actions[0]
		switch a.ToolName {
		case ActionStrategicPlan:
			plan, ok := a.ToolArgs["plan"].(*agent.StrategicPlan)
			if !ok || plan == nil {
				return agent.ErrorResponse(agent.ErrValidation, "strategic plan directive missing plan", nil), nil
			}
			return m.runPhaseSequential(ctx, progress, task, plan)

		case ActionScript:
			steps, _ := a.ToolArgs["steps"].([]agent.ScriptStep)
			metadata, _ := a.ToolArgs["metadata"].(map[string]any)
			return m.runManagerScript(ctx, progress, steps, metadata)
		}

		if m.Tools != nil {
			if tool, ok := m.Tools.Lookup(a.ToolName); ok {
				return m.runManagerTool(ctx, tool, a)
			}
		}

		if _, ok := m.Workers[a.ToolName]; ok {
			return m.runSingleWithFollowUps(ctx, progress, task, a.ToolName, rc)
		}

		return agent.ErrorResponse(agent.ErrToolNotFound, fmt.Sprintf("unknown manager target %q", a.ToolName), nil), nil
	}

	return agent.ErrorResponse(agent.ErrExecution, "planner returned no actions and no final response", nil), nil
}

func (m *Manager) history() []agent.Message {
	if m.Memory == nil {
		return nil
	}
	return m.Memory.GetHistory()
}

// runManagerTool executes a manager-level tool directly, without
// delegating to a worker.
func (m *Manager) runManagerTool(ctx context.Context, tool tools.Tool, a agent.Action) (agent.FinalResponse, error) {
	if err := tool.ArgsSchema().Validate(a.ToolArgs); err != nil {
		return agent.ErrorResponse(agent.ErrValidation, err.Error(), map[string]any{"tool": a.ToolName}), nil
	}
	result, err := tool.Execute(ctx, a.ToolArgs)
	if err != nil {
		return agent.ErrorResponse(agent.ErrExecution, err.Error(), map[string]any{"tool": a.ToolName}), nil
	}
	if fr, ok := result.(agent.FinalResponse); ok {
		return fr, nil
	}
	return agent.FinalResponse{
		Operation:            agent.OpDisplayMessage,
		Payload:              map[string]any{"message": fmt.Sprint(result)},
		HumanReadableSummary: fmt.Sprint(result),
	}, nil
}

// RunDelegated implements worker.Delegate, so a parent manager can hand
// this Manager a task the same way it hands one to a Worker.
func (m *Manager) RunDelegated(ctx context.Context, progress worker.ProgressHandler, req worker.DelegationRequest) (agent.FinalResponse, error) {
	directorContext := req.DirectorContext
	if directorContext == "" && req.ExecutionContext != nil {
		directorContext = req.ExecutionContext.AssembledContext
	}
	return m.Run(ctx, req.Task, progress, req.StrategicPlan, directorContext)
}
