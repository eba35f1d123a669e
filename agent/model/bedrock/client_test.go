package bedrock_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/model/bedrock"
)

type stubRuntime struct{}

func (stubRuntime) Converse(context.Context, *bedrockruntime.ConverseInput,...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	return nil, nil
}

func TestNewRejectsMissingRuntime(t *testing.T) {
	_, err := bedrock.New(nil, "anthropic.claude-3-5-sonnet", 1024, 0)
	require.Error(t, err)
}

func TestNewRejectsMissingModel(t *testing.T) {
	_, err := bedrock.New(stubRuntime{}, "", 1024, 0)
	require.Error(t, err)
}
