// Package policy implements the six strategy objects that hold every
// when-to-stop / when-to-pause decision in the engine: completion
// detection, termination, loop prevention, human-in-the-loop approval,
// checkpointing, and manager follow-ups. Deciding anything outside these
// six policies (e.g. inline iteration caps scattered through the worker
// loop) is a modeling mistake the package is built to prevent.
package policy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the default policy implementations read.
// Zero-value Config is invalid; use DefaultConfig or LoadConfig.
type Config struct {
	Completion  CompletionConfig  `yaml:"completion"`
	Termination TerminationConfig `yaml:"termination"`
	LoopGuard   LoopGuardConfig   `yaml:"loop_guard"`
	HITL        HITLConfig        `yaml:"hitl"`
	Checkpoint  CheckpointConfig  `yaml:"checkpoint"`
	FollowUp    FollowUpConfig    `yaml:"follow_up"`
}

type CompletionConfig struct {
	TerminalOperations  []string `yaml:"terminal_operations"`
	Indicators          []string `yaml:"indicators"`
	CompleteTaskTool    string   `yaml:"complete_task_tool"`
}

type TerminationConfig struct {
	MaxIterations int      `yaml:"max_iterations"`
	TerminalTools []string `yaml:"terminal_tools"`
}

type LoopGuardConfig struct {
	ActionWindow        int `yaml:"action_window"`
	ObservationWindow   int `yaml:"observation_window"`
	RepetitionThreshold int `yaml:"repetition_threshold"`
}

type HITLConfig struct {
	Enabled bool `yaml:"enabled"`
	// Scope is "all" or "writes".
	Scope     string   `yaml:"scope"`
	WriteTools []string `yaml:"write_tools"`
}

type CheckpointConfig struct {
	IterationThreshold int      `yaml:"iteration_threshold"`
	Operations         []string `yaml:"operations"`
	Tools              []string `yaml:"tools"`
}

type FollowUpConfig struct {
	Enabled          bool `yaml:"enabled"`
	StopOnCompletion bool `yaml:"stop_on_completion"`
	MaxRemainingPhases int `yaml:"max_remaining_phases"`
}

// DefaultConfig returns the engine defaults: repetition windows and
// threshold of 5, 5, 3, a 15-iteration cap, and HITL disabled.
func DefaultConfig() Config {
	return Config{
		Completion: CompletionConfig{
			TerminalOperations: []string{"display_message", "display_table"},
			Indicators:         []string{"task complete", "done", "finished"},
			CompleteTaskTool:   "complete_task",
		},
		Termination: TerminationConfig{
			MaxIterations: 15,
			TerminalTools: []string{"complete_task"},
		},
		LoopGuard: LoopGuardConfig{
			ActionWindow:        5,
			ObservationWindow:   5,
			RepetitionThreshold: 3,
		},
		HITL: HITLConfig{
			Enabled: false,
			Scope:   "writes",
		},
		Checkpoint: CheckpointConfig{
			IterationThreshold: 10,
		},
		FollowUp: FollowUpConfig{
			Enabled:            true,
			StopOnCompletion:   true,
			MaxRemainingPhases: 5,
		},
	}
}

// LoadConfig reads a YAML policy configuration from r, defaulting any
// zero-valued numeric/slice fields the document leaves unset to
// DefaultConfig's values so partial override documents remain valid. r may
// be an open file, an embedded asset, or any other byte source; the
// engine itself never opens files.
func LoadConfig(r io.Reader) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("policy: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("policy: parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile is a convenience wrapper opening path and delegating to
// LoadConfig, for the common case of a policy config stored on disk.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("policy: open config %s: %w", path, err)
	}
	defer f.Close()
	return LoadConfig(f)
}
