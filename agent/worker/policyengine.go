package worker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyEngine is the central pre-execution deny filter:
// "consult the central policy engine (a pre-execution deny filter that can
// inspect data-model state to reject impossible actions...); on deny, emit
// policy_denied and return an exception." Evaluate runs after schema
// validation and before Tool.Execute.
type PolicyEngine interface {
	Evaluate(toolName string, args map[string]any) (allowed bool, reason string)
}

// ConditionFunc evaluates one named condition against a candidate action.
// RuleEngine looks up condition functions by name so deny rules stay
// declarative (YAML) while the conditions themselves carry whatever
// domain-specific inspection a host application needs (e.g. consulting a
// data-model service). The engine itself ships none.
type ConditionFunc func(toolName string, args map[string]any) bool

// DenyRule denies toolName's execution when every condition in When
// evaluates to its expected boolean.
type DenyRule struct {
	Tool    string          `yaml:"tool"`
	When    map[string]bool `yaml:"when"`
	Message string          `yaml:"message"`
}

type ruleFile struct {
	Deny []DenyRule `yaml:"deny"`
}

// RuleEngine is the default PolicyEngine: a small set of YAML-declared deny
// rules evaluated against pluggable named conditions (tool_name +
// when-conditions; unknown condition keys default to "not satisfied").
type RuleEngine struct {
	Rules      []DenyRule
	Conditions map[string]ConditionFunc
}

// NewRuleEngine constructs a RuleEngine from an explicit rule set.
func NewRuleEngine(rules []DenyRule, conditions map[string]ConditionFunc) *RuleEngine {
	return &RuleEngine{Rules: rules, Conditions: conditions}
}

// LoadRuleEngineYAML reads one or more YAML policy files, each shaped
// `{deny: [{tool, when, message},...]}`, merging their rules. A missing
// file is skipped; a file that exists but cannot be read, or does not
// parse as YAML, is returned as an error.
func LoadRuleEngineYAML(paths []string, conditions map[string]ConditionFunc) (*RuleEngine, error) {
	var rules []DenyRule
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("worker: read policy file %s: %w", path, err)
		}
		var f ruleFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("worker: parse policy file %s: %w", path, err)
		}
		rules = append(rules, f.Deny...)
	}
	return NewRuleEngine(rules, conditions), nil
}

// Evaluate implements PolicyEngine.
func (e *RuleEngine) Evaluate(toolName string, args map[string]any) (bool, string) {
	if e == nil {
		return true, ""
	}
	for _, rule := range e.Rules {
		if rule.Tool != toolName {
			continue
		}
		if e.conditionsMet(rule.When, toolName, args) {
			msg := rule.Message
			if msg == "" {
				msg = "action denied by policy"
			}
			return false, msg
		}
	}
	return true, ""
}

func (e *RuleEngine) conditionsMet(when map[string]bool, toolName string, args map[string]any) bool {
	for key, expected := range when {
		fn, ok := e.Conditions[key]
		if !ok {
			// Unknown condition keys default to "not satisfied", mirroring
			// the source engine rather than failing the whole rule closed.
			return false
		}
		if fn(toolName, args) != expected {
			return false
		}
	}
	return true
}
