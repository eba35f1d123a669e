package anthropic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/model/anthropic"
)

func TestNewRejectsMissingClient(t *testing.T) {
	_, err := anthropic.New(nil, "claude-3-5-sonnet", 1024, 0)
	require.Error(t, err)
}

func TestNewFromAPIKeyRejectsEmptyKey(t *testing.T) {
	_, err := anthropic.NewFromAPIKey("", "claude-3-5-sonnet", 1024, 0)
	require.Error(t, err)
}
