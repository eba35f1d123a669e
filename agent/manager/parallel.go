package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// runParallelDelegation implements the parallel fan-out path: the planner
// returned more than one action, each naming a worker. Every targeted
// worker runs concurrently, each with its own snapshot of the outer request
// context.
func (m *Manager) runParallelDelegation(ctx context.Context, progress worker.ProgressHandler, actions []agent.Action) (agent.FinalResponse, error) {
	outerRC, _ := agent.FromContext(ctx)

	outcomes := make([]delegationOutcome, len(actions))

	var wg sync.WaitGroup
	for i, a := range actions {
		if _, ok := m.Workers[a.ToolName]; !ok {
			outcomes[i] = delegationOutcome{worker: a.ToolName, err: fmt.Errorf("manager %s: unknown worker %q", m.Name, a.ToolName)}
			continue
		}
		wg.Add(1)
		i, a := i, a
		go func() {
			defer wg.Done()
			childRC := outerRC.Snapshot()
			childCtx := agent.WithContext(ctx, childRC)
			result, err := m.delegateWorker(childCtx, progress, a.ToolName, taskFromArgs(a), nil, childRC)
			outcomes[i] = delegationOutcome{worker: a.ToolName, result: result, err: err}
		}()
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			return agent.FinalResponse{}, o.err
		}
		// Open Question decision (DESIGN.md "Parallel fan-out approval
		// preservation"): a sibling requesting approval bubbles up
		// immediately; already-produced sibling observations stay recorded
		// in each worker's own memory feed for the next run to pick up.
		if o.result.Operation == agent.OpAwaitApproval {
			return o.result, nil
		}
	}

	aggregated := aggregateParallelSections(outcomes)

	latest := ""
	if m.ContextBuilder != nil {
		latest, _ = m.ContextBuilder.LatestUserMessage()
	}
	return m.finalize(ctx, progress, latest, aggregated, 0)
}

// delegationOutcome bundles one parallel-fan-out worker's result.
type delegationOutcome struct {
	worker string
	result agent.FinalResponse
	err    error
}

// aggregateParallelSections builds a display_message aggregation with one
// section per worker.
func aggregateParallelSections(outcomes []delegationOutcome) agent.FinalResponse {
	sections := make([]map[string]any, 0, len(outcomes))
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		sections = append(sections, map[string]any{
			"worker": o.worker,
			"result": o.result,
		})
		lines = append(lines, fmt.Sprintf("%s: %s", o.worker, o.result.HumanReadableSummary))
	}
	return agent.FinalResponse{
		Operation: agent.OpDisplayMessage,
		Payload: map[string]any{
			"message":  strings.Join(lines, "\n"),
			"sections": sections,
		},
		HumanReadableSummary: fmt.Sprintf("%d worker(s) completed in parallel", len(outcomes)),
	}
}

// taskFromArgs extracts the per-worker sub-task from a parallel-delegation
// action's ToolArgs, the convention a manager-level planner uses when it
// returns multiple actions targeting different workers (each action's
// ToolArgs carries {"task": "..."}).
func taskFromArgs(a agent.Action) string {
	if t, ok := a.ToolArgs["task"].(string); ok && t != "" {
		return t
	}
	return ""
}
