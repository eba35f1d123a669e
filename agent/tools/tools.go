// Package tools defines the Tool contract and a thread-safe Registry
// for resolving tools by name. Argument validation is backed by
// github.com/santhosh-tekuri/jsonschema/v6 so tool authors describe
// args_schema as a standard JSON Schema document instead of a bespoke
// validation DSL.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Tool is the contract every domain tool implementation satisfies.
// A single Tool instance may be invoked concurrently by different actions;
// implementations must either be safe for concurrent Execute calls or the
// host must serialize access.
type Tool interface {
	// Name is the tool's unique, snake-case identifier.
	Name() string
	// Description is human-readable context surfaced to planners.
	Description() string
	// ArgsSchema returns the tool's JSON Schema for its arguments, or nil if
	// the tool accepts arbitrary arguments.
	ArgsSchema() *Schema
	// Execute runs the tool against validated arguments.
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// Schema wraps a compiled JSON Schema document used to validate a tool's
// arguments before execution.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// NewSchema compiles a JSON-schema-style document (with "properties" and
// "required") into a reusable Schema. The document is compiled
// once so repeated validations are cheap.
func NewSchema(document map[string]any) (*Schema, error) {
	// Round-trip through JSON so values coming from a Go literal (e.g. int
	// instead of float64) normalize to the shapes the compiler expects.
	b, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("tools: marshal schema: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, fmt.Errorf("tools: decode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	resourceURL := fmt.Sprintf("mem://tool-args-schema-%p.json", document)
	if err := compiler.AddResource(resourceURL, decoded); err != nil {
		return nil, fmt.Errorf("tools: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("tools: compile schema: %w", err)
	}
	return &Schema{raw: document, compiled: compiled}, nil
}

// Validate checks args against the schema, returning a descriptive error on
// the first validation failure. A nil Schema accepts any arguments.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	// jsonschema validates decoded-JSON-shaped values directly; round-trip
	// through JSON so numeric types and nested structures match what a real
	// wire-decoded payload would look like.
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("tools: marshal args: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("tools: decode args: %w", err)
	}
	if err := s.compiled.Validate(decoded); err != nil {
		return err
	}
	return nil
}

// Raw returns the original schema document, e.g. for inclusion in a retry
// hint shown to a planner that produced invalid arguments.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Registry resolves tools by name. Registries are safe for concurrent
// Register and Lookup calls.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, overwriting any previous registration with the same
// name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Lookup resolves a tool by name. ok is false when no such tool is
// registered.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// All returns a snapshot slice of every registered tool.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}
