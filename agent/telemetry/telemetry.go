// Package telemetry defines the logging, metrics, and tracing interfaces
// the engine instruments itself with. Implementations adapt these to
// log/slog and OpenTelemetry; a Noop variant is provided for tests and for
// deployments that don't wire observability.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the structured logger used throughout the engine. Keyvals follow
// the slog convention: alternating key, value pairs.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes the counter/timer/gauge primitives jobs and agents record
// against.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer starts spans for orchestrator/manager/worker/tool operations.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
}

// Span is an in-flight trace span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// Telemetry bundles the three instruments so components can accept a single
// dependency instead of threading Logger/Metrics/Tracer separately.
type Telemetry struct {
	Logger  Logger
	Metrics Metrics
	Tracer  Tracer
}

// Noop returns a Telemetry whose instruments discard everything. Useful as a
// safe default when callers don't configure observability.
func Noop() Telemetry {
	return Telemetry{Logger: NewNoopLogger(), Metrics: NewNoopMetrics(), Tracer: NewNoopTracer()}
}
