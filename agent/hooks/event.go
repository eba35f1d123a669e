package hooks

import "time"

// EventType names a published event. The full set recognized by the engine
// is enumerated in the Event* constants below.
type EventType string

const (
	EventAgentStart              EventType = "agent_start"
	EventAgentEnd                EventType = "agent_end"
	EventManagerStart            EventType = "manager_start"
	EventManagerEnd              EventType = "manager_end"
	EventActionPlanned           EventType = "action_planned"
	EventActionExecuted          EventType = "action_executed"
	EventDelegationPlanned       EventType = "delegation_planned"
	EventDelegationChosen        EventType = "delegation_chosen"
	EventDelegationExecuted      EventType = "delegation_executed"
	EventManagerScriptPlanned    EventType = "manager_script_planned"
	EventOrchestratorPhaseStart  EventType = "orchestrator_phase_start"
	EventOrchestratorPhaseEnd    EventType = "orchestrator_phase_end"
	EventManagerStepStart        EventType = "manager_step_start"
	EventManagerStepEnd          EventType = "manager_step_end"
	EventWorkerToolCall          EventType = "worker_tool_call"
	EventWorkerToolResult        EventType = "worker_tool_result"
	EventPolicyDenied            EventType = "policy_denied"
	EventError                   EventType = "error"
)

// Status is the normalized result status carried by _end/_executed events.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPending Status = "pending"
	StatusError   Status = "error"
)

// Role identifies the kind of actor that produced an event.
type Role string

const (
	RoleOrchestrator Role = "orchestrator"
	RoleManager      Role = "manager"
	RoleWorker       Role = "worker"
	RolePolicy       Role = "policy"
	RoleEngine       Role = "engine"
)

// Actor identifies who produced an event.
type Actor struct {
	Role    Role   `json:"role"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Result is the normalized outcome carried by _end/_executed events.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Event is a single published occurrence on the Bus. Payload
// holds event-type-specific data (tool name/args, plan, phase index,...);
// concrete producers and consumers agree on its shape out of band, the same
// way the bus itself stays decoupled from business logic.
type Event struct {
	Type      EventType      `json:"type"`
	JobID     string         `json:"job_id"`
	Actor     Actor          `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Result    *Result        `json:"result,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// WithResult returns a copy of e with Result set, for use by producers of
// _end/_executed events.
func (e Event) WithResult(status Status, message string) Event {
	e.Result = &Result{Status: status, Message: message}
	return e
}

// WithPayload returns a shallow copy of e with key set in its Payload map.
func (e Event) WithPayload(key string, value any) Event {
	out := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		out[k] = v
	}
	out[key] = value
	e.Payload = out
	return e
}
