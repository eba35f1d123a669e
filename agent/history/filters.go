// Package history implements the role-specific history filters used
// only for prompt construction: pure projections from full history to a
// filtered subset. Filters never mutate the underlying feed.
package history

import "github.com/raviakasapu/auto-ai-agent-framework/agent"

// FilterContext carries the parameters a filter needs beyond the raw
// history slice.
type FilterContext struct {
	// PreviousPhaseID is consulted by ManagerFilter: when set (Has true), only
	// synthesis entries whose PhaseID equals it survive.
	PreviousPhaseID    int
	HasPreviousPhaseID bool
}

// Filter is a pure projection from full history to a filtered subset.
type Filter interface {
	Filter(full []agent.Message, ctx FilterContext) []agent.Message
}

// DefaultFilter returns the history unchanged.
type DefaultFilter struct{}

func (DefaultFilter) Filter(full []agent.Message, _ FilterContext) []agent.Message {
	out := make([]agent.Message, len(full))
	copy(out, full)
	return out
}

// OrchestratorFilter keeps only user_message/assistant_message entries and
// returns the last N (default 8).
type OrchestratorFilter struct {
	// MaxTurns is the number of most recent conversation entries to keep. A
	// zero value defaults to 8.
	MaxTurns int
}

func (f OrchestratorFilter) Filter(full []agent.Message, _ FilterContext) []agent.Message {
	maxTurns := f.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 8
	}
	var convo []agent.Message
	for _, m := range full {
		if m.Type == agent.TypeUserMessage || m.Type == agent.TypeAssistantMessage {
			convo = append(convo, m)
		}
	}
	if len(convo) > maxTurns {
		convo = convo[len(convo)-maxTurns:]
	}
	return convo
}

// ManagerFilter keeps only synthesis entries whose PhaseID matches
// ctx.PreviousPhaseID when PhaseID > 0; otherwise it returns empty.
type ManagerFilter struct{}

func (ManagerFilter) Filter(full []agent.Message, ctx FilterContext) []agent.Message {
	if !ctx.HasPreviousPhaseID || ctx.PreviousPhaseID <= 0 {
		return nil
	}
	var out []agent.Message
	for _, m := range full {
		if m.Type == agent.TypeSynthesis && m.HasPhaseID && m.PhaseID == ctx.PreviousPhaseID {
			out = append(out, m)
		}
	}
	return out
}

// WorkerFilter locates the most recent task entry and keeps only
// subsequent action, observation, error, and global_observation entries,
// dropping everything else. This is the turn-isolation mechanism.
type WorkerFilter struct{}

func (WorkerFilter) Filter(full []agent.Message, _ FilterContext) []agent.Message {
	lastTask := LastTaskIndex(full)
	if lastTask < 0 {
		return nil
	}
	var out []agent.Message
	for _, m := range full[lastTask+1:] {
		switch m.Type {
		case agent.TypeAction, agent.TypeObservation, agent.TypeError, agent.TypeGlobalObservation:
			out = append(out, m)
		}
	}
	return out
}

// LastTaskIndex returns the index of the most recent task entry in full, or
// -1 if none exists. Exported so policies that need "current turn only"
// semantics (completion detection, loop prevention) can share the same
// turn-boundary logic as WorkerFilter.
func LastTaskIndex(full []agent.Message) int {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i].Type == agent.TypeTask {
			return i
		}
	}
	return -1
}

// CurrentTurn returns the slice of full after the most recent task entry,
// or the entire history if no task entry exists yet.
func CurrentTurn(full []agent.Message) []agent.Message {
	idx := LastTaskIndex(full)
	if idx < 0 {
		return full
	}
	return full[idx+1:]
}
