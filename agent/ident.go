// Package agent defines the core data model shared by every tier of the
// hierarchical agent execution engine: actions, final responses, the
// append-only message union, plans, and the per-run request context that
// threads through worker and manager execution.
package agent

// Ident identifies an agent, manager, or worker by its registered name.
// Idents are compared by value and are safe to use as map keys.
type Ident string

// String implements fmt.Stringer.
func (i Ident) String() string { return string(i) }
