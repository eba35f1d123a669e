package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	"github.com/raviakasapu/auto-ai-agent-framework/agent/telemetry"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	logger := telemetry.NewNoopLogger()
	logger.Debug(ctx, "debug", "k", "v")
	logger.Info(ctx, "info", "k", "v")
	logger.Warn(ctx, "warn", "k", "v")
	logger.Error(ctx, "error", "k", "v")
}

func TestNoopMetricsDoesNotPanic(t *testing.T) {
	metrics := telemetry.NewNoopMetrics()
	metrics.IncCounter("c", 1, "env", "test")
	metrics.RecordTimer("t", 10*time.Millisecond, "env", "test")
	metrics.RecordGauge("g", 42, "env", "test")
}

func TestNoopTracerReturnsUsableSpan(t *testing.T) {
	ctx := context.Background()
	tracer := telemetry.NewNoopTracer()
	newCtx, span := tracer.Start(ctx, "op")
	require.Equal(t, ctx, newCtx)
	span.AddEvent("evt", "k", "v")
	span.SetStatus(codes.Ok, "done")
	span.RecordError(nil)
	span.End()
}

func TestNoopBundle(t *testing.T) {
	tel := telemetry.Noop()
	require.NotNil(t, tel.Logger)
	require.NotNil(t, tel.Metrics)
	require.NotNil(t, tel.Tracer)
}
