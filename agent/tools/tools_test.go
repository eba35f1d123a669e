package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/tools"
)

type echoTool struct {
	schema *tools.Schema
}

func (e *echoTool) Name() string             { return "echo" }
func (e *echoTool) Description() string      { return "echoes its input" }
func (e *echoTool) ArgsSchema() *tools.Schema { return e.schema }
func (e *echoTool) Execute(_ context.Context, args map[string]any) (any, error) {
	return map[string]any{"echoed": args["s"]}, nil
}

func newEchoTool(t *testing.T) *echoTool {
	t.Helper()
	schema, err := tools.NewSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"s": map[string]any{"type": "string"}},
		"required":   []any{"s"},
	})
	require.NoError(t, err)
	return &echoTool{schema: schema}
}

func TestRegistryLookup(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(newEchoTool(t))

	got, ok := reg.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestSchemaValidateRejectsMissingRequired(t *testing.T) {
	et := newEchoTool(t)
	err := et.ArgsSchema().Validate(map[string]any{})
	require.Error(t, err)
}

func TestSchemaValidateAcceptsValidArgs(t *testing.T) {
	et := newEchoTool(t)
	err := et.ArgsSchema().Validate(map[string]any{"s": "hi"})
	require.NoError(t, err)
}

func TestNilSchemaAcceptsAnything(t *testing.T) {
	var s *tools.Schema
	require.NoError(t, s.Validate(map[string]any{"anything": 1}))
}
