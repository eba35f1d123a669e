package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) Debug(context.Context, string,...any) {}
func (noopLogger) Info(context.Context, string,...any)  {}
func (noopLogger) Warn(context.Context, string,...any)  {}
func (noopLogger) Error(context.Context, string,...any) {}

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) IncCounter(string, float64,...string)            {}
func (noopMetrics) RecordTimer(string, time.Duration,...string)     {}
func (noopMetrics) RecordGauge(string, float64,...string)           {}

type noopTracer struct{}

// NewNoopTracer returns a Tracer whose spans do nothing.
func NewNoopTracer() Tracer { return noopTracer{} }

func (noopTracer) Start(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(...trace.SpanEndOption)            {}
func (noopSpan) AddEvent(string,...any)               {}
func (noopSpan) SetStatus(codes.Code, string)          {}
func (noopSpan) RecordError(error,...trace.EventOption) {}
