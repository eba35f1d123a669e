// Command demo wires one orchestrator-mode manager and two workers over the
// in-memory stores and runs one phase-sequential job end to end, without
// any external model provider or datastore configured.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/contextbuilder"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/hooks"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/jobstore"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/manager"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/policy"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/telemetry"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
	"github.com/raviakasapu/auto-ai-agent-framework/tools/utility"
)

// scriptedPlanner walks a fixed sequence of actions, calling complete_task on
// the last one, so the demo runs deterministically with no model provider.
type scriptedPlanner struct {
	steps []agent.Action
	calls int
}

func (p *scriptedPlanner) Plan(_ context.Context, _ string, _ []agent.Message) (agent.PlanOutcome, error) {
	if p.calls >= len(p.steps) {
		p.calls++
		return agent.PlanOutcome{Actions: []agent.Action{{
			ToolName: agent.CompleteTaskTool,
			ToolArgs: map[string]any{"summary": "nothing left to do", "final_result": ""},
		}}}, nil
	}
	step := p.steps[p.calls]
	p.calls++
	return agent.PlanOutcome{Actions: []agent.Action{step}}, nil
}

func newResearchWorker(jobID string, store *memory.Store, bus hooks.Bus, jobs jobstore.Store, tele telemetry.Telemetry, cfg policy.Config) *worker.Worker {
	reg := tools.NewRegistry()
	reg.Register(utility.MockSearchTool{})
	reg.Register(utility.CompleteTaskTool{})

	completion := policy.NewDefaultCompletionDetector(cfg.Completion)
	plan := &scriptedPlanner{steps: []agent.Action{
		{ToolName: "mock_search", ToolArgs: map[string]any{"query": "AI agent frameworks"}},
		{ToolName: agent.CompleteTaskTool, ToolArgs: map[string]any{
			"summary":      "found a summary of AI agent frameworks",
			"final_result": "AI Agents are modular frameworks.",
		}},
	}}
	return &worker.Worker{
		Name:           "researcher",
		Version:        "v1",
		Planner:        plan,
		Memory:         memory.NewSharedWorkerView(store, jobID, "researcher"),
		Tools:          reg,
		EventBus:       bus,
		JobStore:       jobs,
		Telemetry:      tele,
		Completion:     completion,
		Termination:    policy.NewDefaultTerminationPolicy(cfg.Termination, completion),
		LoopPrevention: policy.NewDefaultLoopPreventionPolicy(cfg.LoopGuard, completion),
		HITL:           policy.NewDefaultHITLPolicy(cfg.HITL, nil),
		Checkpoint:     policy.NewDefaultCheckpointPolicy(cfg.Checkpoint),
		LoopGuard:      cfg.LoopGuard,
	}
}

func newCalculatorWorker(jobID string, store *memory.Store, bus hooks.Bus, jobs jobstore.Store, tele telemetry.Telemetry, cfg policy.Config) *worker.Worker {
	reg := tools.NewRegistry()
	reg.Register(utility.CalculatorTool{})
	reg.Register(utility.CompleteTaskTool{})

	completion := policy.NewDefaultCompletionDetector(cfg.Completion)
	plan := &scriptedPlanner{steps: []agent.Action{
		{ToolName: "calculator", ToolArgs: map[string]any{"expression": "what is 5 plus 3 times 2"}},
		{ToolName: agent.CompleteTaskTool, ToolArgs: map[string]any{
			"summary":      "evaluated the expression",
			"final_result": "11",
		}},
	}}
	return &worker.Worker{
		Name:           "calculator",
		Version:        "v1",
		Planner:        plan,
		Memory:         memory.NewSharedWorkerView(store, jobID, "calculator"),
		Tools:          reg,
		EventBus:       bus,
		JobStore:       jobs,
		Telemetry:      tele,
		Completion:     completion,
		Termination:    policy.NewDefaultTerminationPolicy(cfg.Termination, completion),
		LoopPrevention: policy.NewDefaultLoopPreventionPolicy(cfg.LoopGuard, completion),
		HITL:           policy.NewDefaultHITLPolicy(cfg.HITL, nil),
		Checkpoint:     policy.NewDefaultCheckpointPolicy(cfg.Checkpoint),
		LoopGuard:      cfg.LoopGuard,
	}
}

func main() {
	ctx := context.Background()
	jobID := uuid.NewString()

	cfg := policy.FromEnv(policy.DefaultConfig())
	store := memory.NewStore()
	bus := hooks.NewBus(func(_ context.Context, event hooks.Event, err error) {
		fmt.Printf("subscriber error on %s: %v\n", event.Type, err)
	})
	jobs := jobstore.NewMemoryStore(nil)
	tele := telemetry.Telemetry{Logger: telemetry.NewSlogLogger("info"), Metrics: telemetry.NewNoopMetrics(), Tracer: telemetry.NewNoopTracer()}

	_, _ = bus.Register(hooks.SubscriberFunc(func(_ context.Context, event hooks.Event) error {
		fmt.Printf("[event] %-24s actor=%s/%s\n", event.Type, event.Actor.Role, event.Actor.Name)
		return nil
	}))

	researcher := newResearchWorker(jobID, store, bus, jobs, tele, cfg)
	calculator := newCalculatorWorker(jobID, store, bus, jobs, tele, cfg)

	builder := contextbuilder.New(jobID, store, nil)
	catalog := []contextbuilder.CatalogEntry{
		{Name: "researcher", Description: "looks things up"},
		{Name: "calculator", Description: "evaluates arithmetic expressions"},
	}

	completion := policy.NewDefaultCompletionDetector(cfg.Completion)
	mgr := &manager.Manager{
		Name:           "research-manager",
		Version:        "v1",
		IsOrchestrator: true,
		Memory:         memory.NewHierarchicalManagerView(store, jobID, "research-manager", []string{"researcher", "calculator"}),
		Workers: map[string]worker.Delegate{
			"researcher": researcher,
			"calculator": calculator,
		},
		JobStore:       jobs,
		EventBus:       bus,
		ContextBuilder: builder,
		Catalog:        catalog,
		Completion:     completion,
		FollowUp:       policy.NewDefaultFollowUpPolicy(cfg.FollowUp, completion),
		Telemetry:      tele,
	}

	rc := agent.RequestContext{JobID: jobID}
	ctx = agent.WithContext(ctx, rc)
	store.AppendConversation(jobID, "user", "Research AI agent frameworks and compute 5 + 3 * 2")

	plan := &agent.StrategicPlan{
		PrimaryWorker: "researcher",
		TaskType:      "mixed",
		Phases: []agent.Phase{
			{Name: "research", Worker: "researcher", Goals: "Summarize AI agent frameworks"},
			{Name: "compute", Worker: "calculator", Goals: "Evaluate 5 + 3 * 2"},
		},
	}

	start := time.Now()
	result, err := mgr.Run(ctx, "Research AI agent frameworks and compute 5 + 3 * 2", nil, plan, "")
	if err != nil {
		panic(err)
	}

	payload, _ := json.MarshalIndent(result.Payload, "", "  ")
	fmt.Printf("\njob %s finished in %s\n", jobID, time.Since(start))
	fmt.Println("operation:", result.Operation)
	fmt.Println("summary:  ", result.HumanReadableSummary)
	fmt.Println("payload:  ", string(payload))
}
