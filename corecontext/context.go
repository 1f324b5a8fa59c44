// Package corecontext threads the governed execution core's boot-time
// singletons through every public entry point as an explicit value, rather
// than as process-wide globals (§9 "Global mutable state"). It is built
// once at boot by New and passed by the caller to capability checks, the
// ACE pipeline, the MEX runtime, and flight-recorder writers.
package corecontext

import (
	"time"

	"github.com/google/uuid"

	"github.com/Nuntissura/Handshake-sub002/capabilities"
	"github.com/Nuntissura/Handshake-sub002/telemetry"
)

// Clock abstracts wall-clock time and ID generation so tests can freeze
// both. Production code uses RealClock; tests typically fix both fields.
type Clock interface {
	Now() time.Time
	NewUUID() uuid.UUID
}

// RealClock is the production Clock: wall-clock time and random UUIDv4s.
type RealClock struct{}

// Now returns the current wall-clock time.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// NewUUID returns a new random UUIDv4.
func (RealClock) NewUUID() uuid.UUID { return uuid.New() }

// Context is the single value threaded through every public entry point of
// the governed execution core. It is immutable after New returns.
type Context struct {
	Registry  *capabilities.Registry
	Telemetry telemetry.Seam
	Clock     Clock
}

// New builds a Context from a Registry and optional overrides. Without a
// WithTelemetry option the seam is Noop; without a WithClock option the
// clock is RealClock. Options are applied as given, including nil values.
func New(registry *capabilities.Registry, opts ...Option) *Context {
	c := &Context{
		Registry:  registry,
		Telemetry: telemetry.Noop(),
		Clock:     RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option customizes a Context built by New.
type Option func(*Context)

// WithTelemetry overrides the default no-op telemetry seam.
func WithTelemetry(seam telemetry.Seam) Option {
	return func(c *Context) { c.Telemetry = seam }
}

// WithClock overrides the default real clock. Tests use this to produce
// deterministic timestamps and UUIDs.
func WithClock(clock Clock) Option {
	return func(c *Context) { c.Clock = clock }
}
