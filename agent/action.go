package agent

// Action is an immutable request to invoke a tool. Planners create actions;
// worker and manager agents consume them. Two actions are considered the
// same invocation when their ToolName and canonical JSON encoding of
// ToolArgs match (see CanonicalArgs).
type Action struct {
	// ToolName is the registered name of the tool to invoke.
	ToolName string
	// ToolArgs carries the arguments for the tool, keyed by parameter name.
	ToolArgs map[string]any
}

// CompleteTaskTool is the reserved tool name that signals a worker run is
// finished. The execution loop treats it specially: once executed, no
// further actions are appended to the run's history and no further planner
// turns occur.
const CompleteTaskTool = "complete_task"

// IsCompleteTask reports whether the action targets the built-in
// completion-signaling tool.
func (a Action) IsCompleteTask() bool { return a.ToolName == CompleteTaskTool }
