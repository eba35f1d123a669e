package policy

import "github.com/raviakasapu/auto-ai-agent-framework/agent/envcfg"

// FromEnv overlays the policy-affecting environment variables on cfg:
// AGENT_MAX_ITERATIONS, AGENT_HITL_ENABLED, and AGENT_HITL_SCOPE. Variables
// that are unset leave cfg's values untouched, so hosts can layer env
// overrides on top of a YAML-loaded or default configuration.
func FromEnv(cfg Config) Config {
	cfg.Termination.MaxIterations = envcfg.Int(envcfg.EnvMaxIterations, cfg.Termination.MaxIterations)
	cfg.HITL.Enabled = envcfg.Bool(envcfg.EnvHITLEnabled, cfg.HITL.Enabled)
	if scope := envcfg.String(envcfg.EnvHITLScope, ""); scope == "all" || scope == "writes" {
		cfg.HITL.Scope = scope
	}
	return cfg
}
