// Package planner implements the concrete planner shapes the worker and
// manager execution loops delegate to. Every planner here conforms to
// the single Planner contract: plan(task, history) → actions | final
// response. The engine treats planners as opaque collaborators; only this
// package knows how any particular one reasons.
package planner

import (
	"context"
	"regexp"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// Reserved action names a manager-tier planner uses to carry a structured
// routing directive rather than a literal tool invocation. The manager
// recognizes these and switches into phase-sequential or script-mode
// delegation.
const (
	// ActionStrategicPlan carries ToolArgs["plan"] = *agent.StrategicPlan.
	ActionStrategicPlan = "__strategic_plan__"
	// ActionScript carries ToolArgs["steps"] = []agent.ScriptStep and
	// optionally ToolArgs["metadata"] = map[string]any.
	ActionScript = "__script__"
)

// Planner is the external-collaborator contract every concrete planner
// implements: stateless with respect to turns, receiving the full
// history on every call and filtering it as it sees fit.
type Planner interface {
	Plan(ctx context.Context, task string, history []agent.Message) (agent.PlanOutcome, error)
}

// singleAction wraps an Action into a PlanOutcome, the common case of "do
// exactly this one thing next".
func singleAction(a agent.Action) agent.PlanOutcome {
	return agent.PlanOutcome{Actions: []agent.Action{a}}
}

// finalOutcome wraps a FinalResponse into a PlanOutcome.
func finalOutcome(r agent.FinalResponse) agent.PlanOutcome {
	return agent.PlanOutcome{Final: &r}
}

// jsonObjectPattern locates the first top-level-looking JSON object in free
// text, the fallback when a model ignores the JSON-only instruction and
// wraps its object in prose.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// fencedJSONPattern extracts a JSON object from a ```json... ``` or ```...
// ``` markdown code fence, tried before the bare-brace fallback.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON pulls the most likely JSON object substring out of raw model
// output, preferring a fenced code block over a bare brace-matched region.
func extractJSON(text string) (string, bool) {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := jsonObjectPattern.FindString(text); m != "" {
		return m, true
	}
	return "", false
}
