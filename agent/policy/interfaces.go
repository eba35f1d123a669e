package policy

import "github.com/raviakasapu/auto-ai-agent-framework/agent"

// CompletionDetector decides whether a result or recent history indicates
// the current turn's task is done. Implementations must restrict
// history inspection to the current turn (entries after the most recent
// task entry), since checking full history causes spurious early
// termination on multi-turn sessions.
type CompletionDetector interface {
	IsComplete(result any, history []agent.Message, ctx agent.RequestContext) bool
}

// TerminationPolicy decides whether the worker loop should stop after a
// given iteration.
type TerminationPolicy interface {
	ShouldTerminate(iteration int, outcome agent.PlanOutcome, history []agent.Message, ctx agent.RequestContext) bool
}

// LoopPreventionPolicy detects stagnation: either a task that looks
// complete but keeps running, or an identical action/observation pattern
// repeating.
type LoopPreventionPolicy interface {
	// DetectStagnation returns a non-empty reason string when stagnation is
	// detected, or "" otherwise.
	DetectStagnation(actionHistory []agent.Action, observationHistory []any, ctx agent.RequestContext) string
}

// HITLPolicy gates tool execution behind human approval.
type HITLPolicy interface {
	RequiresApproval(toolName string, toolArgs map[string]any, ctx agent.RequestContext) bool
	CreateApprovalRequest(toolName string, toolArgs map[string]any, ctx agent.RequestContext) agent.FinalResponse
}

// CheckpointPolicy decides when to pause and surface an intermediate result
// for review.
type CheckpointPolicy interface {
	ShouldCheckpoint(result agent.FinalResponse, iteration int, ctx agent.RequestContext) bool
	CreateCheckpointResponse(result agent.FinalResponse, ctx agent.RequestContext) agent.FinalResponse
}

// FollowUpPolicy decides whether a manager should continue to the next
// phase after a primary result.
type FollowUpPolicy interface {
	ShouldFollowUp(primaryResult agent.FinalResponse, phases []agent.Phase, completedPhases int, ctx agent.RequestContext) bool
}
