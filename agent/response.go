package agent

// Operation tags the shape of a FinalResponse's Payload. The engine
// recognizes a fixed set but domains may surface additional
// operations the engine passes through unmodified.
type Operation string

const (
	// OpDisplayMessage carries free-form text in Payload["message"].
	OpDisplayMessage Operation = "display_message"
	// OpDisplayTable carries Payload["title"], Payload["headers"] and
	// Payload["rows"].
	OpDisplayTable Operation = "display_table"
	// OpAwaitApproval carries Payload["tool"], Payload["args"],
	// Payload["message"] and Payload["reason"]; produced by the HITL policy.
	OpAwaitApproval Operation = "await_approval"
	// OpModelOps carries a domain-specific structured mutation descriptor.
	OpModelOps Operation = "model_ops"
)

// FinalResponse is the structured result returned up the agent tree. It is
// produced by planners when a task is done, by tools that signal
// completion, and by the engine itself for errors, approvals, and
// checkpoints.
type FinalResponse struct {
	// Operation tags which shape Payload follows.
	Operation Operation
	// Payload carries operation-specific structured data.
	Payload map[string]any
	// HumanReadableSummary is a short, user-facing description of the result.
	HumanReadableSummary string
}

// WithPayload returns a shallow copy of r with key set to value in Payload.
// Used by policies (checkpoint, HITL) that need to layer fields onto an
// existing result without mutating the caller's map.
func (r FinalResponse) WithPayload(key string, value any) FinalResponse {
	out := r
	out.Payload = make(map[string]any, len(r.Payload)+1)
	for k, v := range r.Payload {
		out.Payload[k] = v
	}
	out.Payload[key] = value
	return out
}

// IsError reports whether the response's payload marks an error, following
// the convention that user-visible failures always set payload["error"].
func (r FinalResponse) IsError() bool {
	if r.Payload == nil {
		return false
	}
	v, ok := r.Payload["error"]
	return ok && v == true
}

// ErrorResponse builds a terminal FinalResponse describing a failure:
// payload.error is true and the summary describes the cause in
// human-readable terms.
func ErrorResponse(kind ErrorKind, summary string, extra map[string]any) FinalResponse {
	payload := map[string]any{
		"error":      true,
		"error_type": string(kind),
	}
	for k, v := range extra {
		payload[k] = v
	}
	return FinalResponse{
		Operation:            OpDisplayMessage,
		Payload:              payload,
		HumanReadableSummary: summary,
	}
}

// ErrorKind enumerates the error kinds surfaced as error_type on a
// structured error payload.
type ErrorKind string

const (
	ErrValidation     ErrorKind = "ValidationError"
	ErrToolNotFound   ErrorKind = "ToolNotFound"
	ErrExecution      ErrorKind = "ExecutionError"
	ErrPolicyDenied   ErrorKind = "PolicyDenied"
	ErrApprovalNeeded ErrorKind = "ApprovalRequired"
	ErrStagnation     ErrorKind = "Stagnation"
	ErrIterationCap   ErrorKind = "IterationCap"
	ErrPlanParse      ErrorKind = "PlanParseError"
)
