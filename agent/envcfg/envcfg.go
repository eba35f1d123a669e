// Package envcfg reads the engine's behavior-affecting environment toggles.
// Truthy values are the case-insensitive strings 1/true/yes; numeric
// settings must be parseable integers and fall back to their documented
// defaults when unset or malformed.
package envcfg

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names recognized by the engine. Hosts set these to
// tune prompt assembly and policy behavior without recompiling.
const (
	// EnvMaxIterations caps the worker loop's iteration count
	// (TerminationPolicy).
	EnvMaxIterations = "AGENT_MAX_ITERATIONS"
	// EnvHITLEnabled enables human-in-the-loop approval gating.
	EnvHITLEnabled = "AGENT_HITL_ENABLED"
	// EnvHITLScope is "all" or "writes".
	EnvHITLScope = "AGENT_HITL_SCOPE"

	// EnvIncludeExecutionTraces controls whether action/observation trace
	// entries are included in planner prompts.
	EnvIncludeExecutionTraces = "AGENT_INCLUDE_EXECUTION_TRACES"
	// EnvIncludeGlobalObservations controls whether global_observation
	// entries are included in planner prompts.
	EnvIncludeGlobalObservations = "AGENT_INCLUDE_GLOBAL_OBSERVATIONS"
	// EnvIncludeHistory controls whether any history at all is included in
	// planner prompts.
	EnvIncludeHistory = "AGENT_INCLUDE_HISTORY"
	// EnvMaxHistoryEntries bounds how many history entries a planner prompt
	// carries.
	EnvMaxHistoryEntries = "AGENT_MAX_HISTORY_ENTRIES"
	// EnvObservationMaxChars truncates each observation rendered into a
	// planner prompt to this many characters.
	EnvObservationMaxChars = "AGENT_OBSERVATION_MAX_CHARS"
	// EnvStrategicHistoryWithDirectorContext lets the strategic planner keep
	// conversation history in its prompt even when a director context is
	// present (by default the director context replaces it).
	EnvStrategicHistoryWithDirectorContext = "AGENT_STRATEGIC_HISTORY_WITH_DIRECTOR_CONTEXT"
	// EnvToolChoice is the orchestrator's tool-choice policy: "auto" or
	// "required".
	EnvToolChoice = "AGENT_TOOL_CHOICE"
)

// Truthy reports whether v is one of the accepted truthy spellings
// (case-insensitive 1/true/yes).
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Bool reads the named variable as a truthy toggle, returning def when the
// variable is unset or empty.
func Bool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return Truthy(v)
}

// Int reads the named variable as an integer, returning def when the
// variable is unset, empty, or not a parseable integer.
func Int(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// String reads the named variable, returning def when unset or empty.
func String(name, def string) string {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// PromptSettings bundles the environment toggles that shape planner prompt
// assembly.
type PromptSettings struct {
	IncludeExecutionTraces    bool
	IncludeGlobalObservations bool
	IncludeHistory            bool
	MaxHistoryEntries         int
	ObservationMaxChars       int

	// StrategicHistoryWithDirectorContext keeps conversation history in the
	// strategic planner's prompt even when a director context is present.
	StrategicHistoryWithDirectorContext bool

	// ToolChoice is "auto" or "required".
	ToolChoice string
}

// DefaultPromptSettings returns the documented defaults: all inclusion
// toggles on, 50 history entries, 2000-character observations, history
// suppressed under a director context, tool choice "auto".
func DefaultPromptSettings() PromptSettings {
	return PromptSettings{
		IncludeExecutionTraces:    true,
		IncludeGlobalObservations: true,
		IncludeHistory:            true,
		MaxHistoryEntries:         50,
		ObservationMaxChars:       2000,
		ToolChoice:                "auto",
	}
}

// PromptSettingsFromEnv reads every prompt-assembly toggle from the process
// environment, falling back to DefaultPromptSettings values.
func PromptSettingsFromEnv() PromptSettings {
	def := DefaultPromptSettings()
	return PromptSettings{
		IncludeExecutionTraces:              Bool(EnvIncludeExecutionTraces, def.IncludeExecutionTraces),
		IncludeGlobalObservations:           Bool(EnvIncludeGlobalObservations, def.IncludeGlobalObservations),
		IncludeHistory:                      Bool(EnvIncludeHistory, def.IncludeHistory),
		MaxHistoryEntries:                   Int(EnvMaxHistoryEntries, def.MaxHistoryEntries),
		ObservationMaxChars:                 Int(EnvObservationMaxChars, def.ObservationMaxChars),
		StrategicHistoryWithDirectorContext: Bool(EnvStrategicHistoryWithDirectorContext, def.StrategicHistoryWithDirectorContext),
		ToolChoice:                          String(EnvToolChoice, def.ToolChoice),
	}
}
