// Package telemetry defines the structured logging, metrics, and tracing
// seam that corecontext.Context carries, so callers can swap in a no-op
// (tests) or an OpenTelemetry/Clue-backed implementation (production). The
// gates, validators, and adapter dispatch in this module do not call the
// seam themselves.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger captures structured logging. Implementations typically delegate to
// Clue or slog; the interface stays small so tests can provide stubs.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter/timer/gauge helpers for core instrumentation.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer abstracts span creation so core code stays agnostic of the
// underlying OpenTelemetry provider.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	Span(ctx context.Context) Span
}

// Span represents an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// Seam bundles the three telemetry surfaces so CoreContext can carry a
// single value instead of three.
type Seam struct {
	Logger  Logger
	Metrics Metrics
	Tracer  Tracer
}

// Noop returns a Seam whose components discard everything. Safe zero value
// for tests and for callers that have not wired telemetry yet.
func Noop() Seam {
	return Seam{Logger: NewNoopLogger(), Metrics: NewNoopMetrics(), Tracer: NewNoopTracer()}
}

// GateDecision records a gate/validator pass or deny as both a log line and
// a counter increment. No gate or validator in this module calls it.
func (s Seam) GateDecision(ctx context.Context, stage, name string, allowed bool, reason string) {
	decision := "allow"
	if !allowed {
		decision = "deny"
	}
	if allowed {
		s.Logger.Debug(ctx, "gate decision", "stage", stage, "name", name, "decision", decision)
	} else {
		s.Logger.Warn(ctx, "gate decision", "stage", stage, "name", name, "decision", decision, "reason", reason)
	}
	s.Metrics.IncCounter("core.gate.decision", 1, "stage", stage, "name", name, "decision", decision)
}
