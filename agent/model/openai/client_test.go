package openai_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/model/openai"
)

func TestNewRejectsMissingClient(t *testing.T) {
	_, err := openai.New(nil, "gpt-4o", 1024, 0)
	require.Error(t, err)
}

func TestNewFromAPIKeyRejectsEmptyKey(t *testing.T) {
	_, err := openai.NewFromAPIKey("", "gpt-4o", 1024, 0)
	require.Error(t, err)
}
