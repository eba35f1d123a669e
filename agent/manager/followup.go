package manager

import (
	"context"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// runSingleWithFollowUps implements the "single delegation + follow-ups"
// path: execute the primary worker, then repeatedly ask the follow-up
// policy before each remaining phase; each follow-up runs against the same
// worker with the previous result's formatted output appended to the task,
// the same plan/context otherwise unchanged. Manager-level completion
// is checked
// before the loop and again after every follow-up.
func (m *Manager) runSingleWithFollowUps(ctx context.Context, progress worker.ProgressHandler, task, workerName string, outerRC agent.RequestContext) (agent.FinalResponse, error) {
	result, err := m.delegateWorker(ctx, progress, workerName, task, nil, outerRC)
	if err != nil || result.Operation == agent.OpAwaitApproval {
		return result, err
	}

	var phases []agent.Phase
	if outerRC.StrategicPlan != nil {
		phases = outerRC.StrategicPlan.Phases
	}
	completed := 1
	complete := m.isComplete(result, outerRC)

	for !complete && m.FollowUp != nil && m.FollowUp.ShouldFollowUp(result, phases, completed, outerRC) {
		followUpTask := task + formatPreviousPhase(result)
		result, err = m.delegateWorker(ctx, progress, workerName, followUpTask, nil, outerRC)
		if err != nil || result.Operation == agent.OpAwaitApproval {
			return result, err
		}
		completed++
		complete = m.isComplete(result, outerRC)
	}

	latest := task
	if m.ContextBuilder != nil {
		if msg, ok := m.ContextBuilder.LatestUserMessage(); ok {
			latest = msg
		}
	}
	return m.finalize(ctx, progress, latest, result, 0)
}

func (m *Manager) isComplete(result agent.FinalResponse, rc agent.RequestContext) bool {
	if m.Completion == nil {
		return false
	}
	return m.Completion.IsComplete(result, m.history(), rc)
}
