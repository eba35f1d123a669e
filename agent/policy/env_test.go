package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/envcfg"
)

func TestFromEnvOverridesIterationCapAndHITL(t *testing.T) {
	t.Setenv(envcfg.EnvMaxIterations, "3")
	t.Setenv(envcfg.EnvHITLEnabled, "yes")
	t.Setenv(envcfg.EnvHITLScope, "all")

	cfg := FromEnv(DefaultConfig())
	assert.Equal(t, 3, cfg.Termination.MaxIterations)
	assert.True(t, cfg.HITL.Enabled)
	assert.Equal(t, "all", cfg.HITL.Scope)
}

func TestFromEnvLeavesConfigAloneWhenUnset(t *testing.T) {
	base := DefaultConfig()
	cfg := FromEnv(base)
	assert.Equal(t, base.Termination.MaxIterations, cfg.Termination.MaxIterations)
	assert.Equal(t, base.HITL.Enabled, cfg.HITL.Enabled)
	assert.Equal(t, base.HITL.Scope, cfg.HITL.Scope)
}

func TestFromEnvRejectsUnknownHITLScope(t *testing.T) {
	t.Setenv(envcfg.EnvHITLScope, "everything")
	cfg := FromEnv(DefaultConfig())
	assert.Equal(t, DefaultConfig().HITL.Scope, cfg.HITL.Scope)
}

func TestFromEnvIgnoresMalformedIterationCap(t *testing.T) {
	t.Setenv(envcfg.EnvMaxIterations, "lots")
	cfg := FromEnv(DefaultConfig())
	assert.Equal(t, DefaultConfig().Termination.MaxIterations, cfg.Termination.MaxIterations)
}
