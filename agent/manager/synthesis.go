package manager

import (
	"context"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/worker"
)

// finalize runs the post-aggregation synthesis precedence (see
// DESIGN.md's "Synthesizer-vs-gateway precedence" decision): a configured
// Synthesizer runs first; if it produces a full result, that result wins
// outright and the gateway is never consulted. Otherwise, a lighter-weight
// SynthesisGateway (if configured) reshapes the aggregation. With neither
// configured, the aggregation returns unchanged.
func (m *Manager) finalize(ctx context.Context, progress worker.ProgressHandler, latestUserRequest string, aggregated agent.FinalResponse, phaseID int) (agent.FinalResponse, error) {
	if m.Synthesizer != nil {
		pressRelease := latestUserRequest
		if m.ContextBuilder != nil {
			pressRelease = m.ContextBuilder.BuildSynthesizerContext(latestUserRequest, aggregated)
		}
		synResult, err := m.Synthesizer.RunDelegated(ctx, progress, worker.DelegationRequest{Task: pressRelease})
		if err != nil {
			return agent.FinalResponse{}, err
		}
		if m.Memory != nil {
			m.Memory.AddGlobal(agent.Message{Type: agent.TypeSynthesis, Content: synResult, FromManager: m.Name}.WithPhase(phaseID))
		}
		if full, ok := synResult.Payload["full_result"].(agent.FinalResponse); ok {
			return full, nil
		}
	}
	if m.SynthesisGateway != nil {
		return m.SynthesisGateway.Reshape(ctx, aggregated, latestUserRequest)
	}
	return aggregated, nil
}
