package policy

import (
	"fmt"
	"strings"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/history"
)

// DefaultCompletionDetector implements CompletionDetector using the
// configurable indicator/operation patterns from Config.
type DefaultCompletionDetector struct {
	Config CompletionConfig
}

// NewDefaultCompletionDetector constructs a detector from cfg.
func NewDefaultCompletionDetector(cfg CompletionConfig) DefaultCompletionDetector {
	return DefaultCompletionDetector{Config: cfg}
}

func (d DefaultCompletionDetector) IsComplete(result any, full []agent.Message, _ agent.RequestContext) bool {
	if d.resultIndicatesCompletion(result) {
		return true
	}

	current := history.CurrentTurn(full)
	depth := len(current)
	if depth > 10 {
		current = current[depth-10:]
	}
	for i := len(current) - 1; i >= 0; i-- {
		entry := current[i]
		if entry.Type == agent.TypeAction && entry.Tool == d.completeTaskTool() {
			return true
		}
		if entry.Type == agent.TypeFinal && d.containsIndicator(fmt.Sprint(entry.Content)) {
			return true
		}
		if entry.Type == agent.TypeObservation {
			if m, ok := entry.Content.(map[string]any); ok {
				if completed, ok := m["completed"].(bool); ok && completed {
					return true
				}
			}
			if d.containsIndicator(fmt.Sprint(entry.Content)) {
				return true
			}
		}
	}
	return false
}

func (d DefaultCompletionDetector) resultIndicatesCompletion(result any) bool {
	switch r := result.(type) {
	case agent.FinalResponse:
		if completed, ok := r.Payload["completed"].(bool); ok && completed {
			return true
		}
		if d.operationIsTerminal(string(r.Operation)) && d.containsIndicator(r.HumanReadableSummary) {
			return true
		}
		return d.containsIndicator(r.HumanReadableSummary)
	case map[string]any:
		if completed, ok := r["completed"].(bool); ok && completed {
			return true
		}
		if validation, ok := r["response_validation"].(map[string]any); ok {
			if complete, ok := validation["complete"].(bool); ok && complete {
				return true
			}
		}
		if op, ok := r["operation"].(string); ok && d.operationIsTerminal(op) {
			if summary, ok := r["human_readable_summary"].(string); ok && d.containsIndicator(summary) {
				return true
			}
		}
		for _, key := range []string{"message", "summary", "final_result"} {
			if s, ok := r[key].(string); ok && d.containsIndicator(s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (d DefaultCompletionDetector) operationIsTerminal(op string) bool {
	for _, t := range d.Config.TerminalOperations {
		if t == op {
			return true
		}
	}
	return false
}

func (d DefaultCompletionDetector) containsIndicator(s string) bool {
	lower := strings.ToLower(s)
	for _, ind := range d.Config.Indicators {
		if ind != "" && strings.Contains(lower, strings.ToLower(ind)) {
			return true
		}
	}
	return false
}

func (d DefaultCompletionDetector) completeTaskTool() string {
	if d.Config.CompleteTaskTool != "" {
		return d.Config.CompleteTaskTool
	}
	return agent.CompleteTaskTool
}

// DefaultTerminationPolicy implements TerminationPolicy. Completion
// is only consulted when the planner did NOT return new actions or a final
// response; if the planner is still planning, it is by definition not
// done, so checking completion there would terminate prematurely.
type DefaultTerminationPolicy struct {
	Config     TerminationConfig
	Completion CompletionDetector
}

func NewDefaultTerminationPolicy(cfg TerminationConfig, completion CompletionDetector) DefaultTerminationPolicy {
	return DefaultTerminationPolicy{Config: cfg, Completion: completion}
}

func (p DefaultTerminationPolicy) ShouldTerminate(iteration int, outcome agent.PlanOutcome, full []agent.Message, ctx agent.RequestContext) bool {
	if p.Config.MaxIterations > 0 && iteration > p.Config.MaxIterations {
		return true
	}
	if outcome.IsFinal() {
		return true
	}
	if len(p.Config.TerminalTools) > 0 {
		for _, a := range outcome.Actions {
			if p.isTerminalTool(a.ToolName) {
				return true
			}
		}
	}
	// The planner returned actions: it is actively working, so no
	// completion check runs here.
	if len(outcome.Actions) > 0 {
		return false
	}
	if p.Completion == nil {
		return false
	}
	var lastObservation any
	for i := len(full) - 1; i >= 0; i-- {
		if full[i].Type == agent.TypeObservation {
			lastObservation = full[i].Content
			break
		}
	}
	if lastObservation == nil {
		return false
	}
	return p.Completion.IsComplete(lastObservation, full, ctx)
}

func (p DefaultTerminationPolicy) isTerminalTool(name string) bool {
	for _, t := range p.Config.TerminalTools {
		if t == name {
			return true
		}
	}
	return false
}

// DefaultLoopPreventionPolicy implements LoopPreventionPolicy.
type DefaultLoopPreventionPolicy struct {
	Config     LoopGuardConfig
	Completion CompletionDetector
}

func NewDefaultLoopPreventionPolicy(cfg LoopGuardConfig, completion CompletionDetector) DefaultLoopPreventionPolicy {
	return DefaultLoopPreventionPolicy{Config: cfg, Completion: completion}
}

func (p DefaultLoopPreventionPolicy) DetectStagnation(actions []agent.Action, observations []any, ctx agent.RequestContext) string {
	if p.Completion != nil && len(observations) > 0 {
		if p.Completion.IsComplete(observations[len(observations)-1], nil, ctx) {
			return "task appears complete but agent continues execution"
		}
	}

	threshold := p.Config.RepetitionThreshold
	if threshold <= 0 {
		threshold = 3
	}
	if len(actions) < threshold {
		return ""
	}

	recentActions := actions[len(actions)-threshold:]
	firstSig := agent.ActionSignature(recentActions[0].ToolName, recentActions[0].ToolArgs)
	for _, a := range recentActions[1:] {
		if agent.ActionSignature(a.ToolName, a.ToolArgs) != firstSig {
			return ""
		}
	}

	if len(observations) < threshold {
		return ""
	}
	recentObs := observations[len(observations)-threshold:]
	firstObs := fmt.Sprint(recentObs[0])
	for _, o := range recentObs[1:] {
		if fmt.Sprint(o) != firstObs {
			return ""
		}
	}

	return fmt.Sprintf("stagnation: same action pattern repeated %d times with identical results. action: %s", threshold, firstSig)
}

// DefaultHITLPolicy implements HITLPolicy.
type DefaultHITLPolicy struct {
	Config        HITLConfig
	HasExecuted   func(jobID, signature string) bool
}

func NewDefaultHITLPolicy(cfg HITLConfig, hasExecuted func(jobID, signature string) bool) DefaultHITLPolicy {
	return DefaultHITLPolicy{Config: cfg, HasExecuted: hasExecuted}
}

func (p DefaultHITLPolicy) RequiresApproval(toolName string, toolArgs map[string]any, ctx agent.RequestContext) bool {
	if !p.Config.Enabled {
		return false
	}
	if ctx.Approvals != nil && ctx.Approvals[toolName] {
		return false
	}
	if ctx.JobID != "" && p.HasExecuted != nil {
		sig := agent.ActionSignature(toolName, toolArgs)
		if p.HasExecuted(ctx.JobID, sig) {
			return false
		}
	}
	switch p.Config.Scope {
	case "all":
		return true
	case "writes":
		for _, t := range p.Config.WriteTools {
			if t == toolName {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (p DefaultHITLPolicy) CreateApprovalRequest(toolName string, toolArgs map[string]any, _ agent.RequestContext) agent.FinalResponse {
	return agent.FinalResponse{
		Operation: agent.OpAwaitApproval,
		Payload: map[string]any{
			"await_approval": true,
			"tool":            toolName,
			"args":            toolArgs,
			"message":         fmt.Sprintf("approval required to execute tool %q", toolName),
			"reason":          fmt.Sprintf("HITL enabled (scope=%s)", p.Config.Scope),
		},
		HumanReadableSummary: fmt.Sprintf("approval required: %s", toolName),
	}
}

// DefaultCheckpointPolicy implements CheckpointPolicy.
type DefaultCheckpointPolicy struct {
	cfg CheckpointConfig
}

// NewDefaultCheckpointPolicy constructs a checkpoint policy from cfg.
func NewDefaultCheckpointPolicy(cfg CheckpointConfig) DefaultCheckpointPolicy {
	return DefaultCheckpointPolicy{cfg: cfg}
}

func (p DefaultCheckpointPolicy) ShouldCheckpoint(result agent.FinalResponse, iteration int, ctx agent.RequestContext) bool {
	if p.cfg.IterationThreshold > 0 && iteration >= p.cfg.IterationThreshold {
		return true
	}
	for _, op := range p.cfg.Operations {
		if op == string(result.Operation) {
			return true
		}
	}
	if ctx.LastTool != "" {
		for _, t := range p.cfg.Tools {
			if t == ctx.LastTool {
				return true
			}
		}
	}
	return false
}

func (p DefaultCheckpointPolicy) CreateCheckpointResponse(result agent.FinalResponse, _ agent.RequestContext) agent.FinalResponse {
	out := result.WithPayload("checkpoint", true)
	out = out.WithPayload("message", "intermediate result - review before continuing")
	if out.HumanReadableSummary == "" {
		out.HumanReadableSummary = "intermediate checkpoint"
	}
	return out
}

// DefaultFollowUpPolicy implements FollowUpPolicy.
type DefaultFollowUpPolicy struct {
	Config     FollowUpConfig
	Completion CompletionDetector
}

func NewDefaultFollowUpPolicy(cfg FollowUpConfig, completion CompletionDetector) DefaultFollowUpPolicy {
	return DefaultFollowUpPolicy{Config: cfg, Completion: completion}
}

func (p DefaultFollowUpPolicy) ShouldFollowUp(primary agent.FinalResponse, phases []agent.Phase, completedPhases int, ctx agent.RequestContext) bool {
	if !p.Config.Enabled {
		return false
	}
	if p.Config.StopOnCompletion && p.Completion != nil && p.Completion.IsComplete(primary, nil, ctx) {
		return false
	}
	if p.Config.MaxRemainingPhases > 0 {
		remaining := len(phases) - completedPhases
		if remaining > p.Config.MaxRemainingPhases {
			return false
		}
	}
	return completedPhases < len(phases)
}
