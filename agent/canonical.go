package agent

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalArgs renders tool arguments as stable JSON: object keys are
// sorted recursively so two semantically equal argument maps always
// produce byte-identical output, independent of map iteration order or
// the order keys were inserted in. This is the basis for the
// executed-action signature.
func CanonicalArgs(args map[string]any) string {
	b, err := canonicalJSON(args)
	if err != nil {
		// args originate from planners and tool schemas; a value that cannot
		// round-trip through JSON is a programming error, not a runtime
		// condition callers can recover from. Fall back to a best-effort
		// representation rather than panicking so signature computation
		// never aborts a run.
		return fmt.Sprintf("%v", args)
	}
	return string(b)
}

// canonicalJSON recursively sorts map keys before marshaling so the
// resulting JSON is stable regardless of input ordering.
func canonicalJSON(v any) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// normalize walks an arbitrary decoded-JSON-shaped value and replaces maps
// with an ordered representation (sortedMap) so json.Marshal emits keys in
// sorted order. Slices are walked element-wise; scalars pass through.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(sortedMap, 0, len(keys))
		for _, k := range keys {
			nv, err := normalize(t[k])
			if err != nil {
				return nil, err
			}
			out = append(out, sortedEntry{key: k, value: nv})
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			nv, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

type sortedEntry struct {
	key   string
	value any
}

// sortedMap marshals as a JSON object with keys in the order they were
// appended (callers append in sorted order via normalize).
type sortedMap []sortedEntry

// MarshalJSON implements json.Marshaler, writing entries in slice order so
// the sort performed by normalize is preserved in the output bytes.
func (m sortedMap) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, e := range m {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// ActionSignature computes the executed-action signature used to suppress
// repeat HITL approval prompts: "{tool}:{canonical-json(args)}".
func ActionSignature(toolName string, args map[string]any) string {
	return toolName + ":" + CanonicalArgs(args)
}
