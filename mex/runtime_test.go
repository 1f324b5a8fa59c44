package mex_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Nuntissura/Handshake-sub002/capabilities"
	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
	"github.com/Nuntissura/Handshake-sub002/mex/gates"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time     { return f.t }
func (f fixedClock) NewUUID() uuid.UUID { return uuid.Nil }

type echoAdapter struct {
	id      string
	version string
}

func (a echoAdapter) EngineID() string      { return a.id }
func (a echoAdapter) EngineVersion() string { return a.version }
func (a echoAdapter) Execute(_ context.Context, op *mex.PlannedOperation) (*mex.EngineResult, error) {
	return &mex.EngineResult{Status: mex.StatusSucceeded}, nil
}

// blockingAdapter never returns on its own; it only surfaces ctx's error,
// so tests can exercise wall-time timeout and throttle cancellation.
type blockingAdapter struct{ id, version string }

func (a blockingAdapter) EngineID() string      { return a.id }
func (a blockingAdapter) EngineVersion() string { return a.version }
func (a blockingAdapter) Execute(ctx context.Context, _ *mex.PlannedOperation) (*mex.EngineResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testRegistry(t *testing.T) *capabilities.Registry {
	t.Helper()
	reg, err := capabilities.NewRegistry(capabilities.Config{
		Axes: []capabilities.ID{"fs.read", "fs.write"},
		Profiles: []capabilities.ProfileDef{
			{ID: "reader", Capabilities: []capabilities.ID{"fs.read"}},
		},
		JobProfiles: map[string]string{"read-job": "reader"},
	})
	require.NoError(t, err)
	return reg
}

func basePlannedOp() *mex.PlannedOperation {
	return &mex.PlannedOperation{
		SchemaVersion:       mex.SchemaVersion,
		OpID:                uuid.New(),
		EngineID:            "echo-engine",
		EngineVersionReq:    "1.0.0",
		Operation:           "noop",
		CapabilitiesRequested: []string{"fs.read"},
		CapabilityProfileID: "reader",
		Determinism:         mex.D0,
		EvidencePolicy:      mex.EvidencePolicy{Required: true},
	}
}

func catalog() gates.StaticCatalog {
	return gates.StaticCatalog{
		"echo-engine": gates.EngineDecl{
			EngineID:           "echo-engine",
			Version:            "1.0.0",
			MaxCPUMillis:       1000,
			MaxWallMillis:      1000,
			MaxMemoryBytes:     1 << 20,
			MaxOutputBytes:     1 << 20,
			DeterminismCeiling: mex.D3,
		},
	}
}

func TestRuntimeSucceedsThroughAllGates(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	rt := mex.Runtime{Gates: chain, Adapters: adapters, Clock: fixedClock{t: time.Unix(0, 0)}}
	result := rt.Execute(context.Background(), cc, basePlannedOp())
	require.Equal(t, mex.StatusSucceeded, result.Status)
	require.Empty(t, result.Errors)
}

// S6 — MEX determinism denial: PlannedOperation{determinism=D0,
// evidence_policy.required=false} is denied by DetGate, and no adapter is
// ever invoked.
func TestRuntimeDeterminismDenialMissingEvidencePolicy(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.Determinism = mex.D0
	op.EvidencePolicy.Required = false

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Len(t, result.Errors, 1)
	require.Equal(t, string(mex.CodeDeterminismDenied), result.Errors[0].Code)
}

// A D2/D3 operation carries no evidence_policy.required obligation — that
// rule is scoped to D0/D1 alone.
func TestRuntimeD3AllowedWithoutEvidencePolicy(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.Determinism = mex.D3
	op.EvidencePolicy.Required = false

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusSucceeded, result.Status)
}

// Testable Property 5: determinism must not exceed the engine's
// registry-declared determinism_ceiling.
func TestRuntimeDeterminismCeilingExceeded(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	cat := catalog()
	decl := cat["echo-engine"]
	decl.DeterminismCeiling = mex.D1
	cat["echo-engine"] = decl
	chain := gates.Default(cat, "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.Determinism = mex.D3
	op.EvidencePolicy.Required = false

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Equal(t, string(mex.CodeDeterminismDenied), result.Errors[0].Code)
}

func TestRuntimeCapabilityDenial(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.CapabilitiesRequested = []string{"fs.write"}

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Equal(t, string(mex.CodeMissingCapability), result.Errors[0].Code)
}

func TestRuntimeBudgetCeilingExceeded(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	over := int64(1 << 30)
	op.Budget.MemoryBytes = &over

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Equal(t, string(mex.CodeBudgetCeilingExceeded), result.Errors[0].Code)
}

func TestRuntimeIntegrityVersionMismatch(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.EngineVersionReq = "2.0.0"

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Equal(t, string(mex.CodeIntegrityViolation), result.Errors[0].Code)
}

// §4.3 gate 3: an input artifact path that tries to escape the storage
// root via ".." is denied before any resource is touched.
func TestRuntimeIntegrityArtifactPathEscapeDenied(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.Inputs = []mex.ArtifactHandle{{ArtifactID: uuid.New(), Path: "../etc/passwd"}}

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Equal(t, string(mex.CodeIntegrityViolation), result.Errors[0].Code)
}

// §4.3 gate 1: params that violate the engine's declared params_schema for
// the requested operation are denied by SchemaGate.
func TestRuntimeParamsSchemaViolationDenied(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	cat := catalog()
	decl := cat["echo-engine"]
	decl.ParamsSchemas = map[string]json.RawMessage{
		"noop": json.RawMessage(`{"type":"object","required":["target"],"properties":{"target":{"type":"string"}}}`),
	}
	cat["echo-engine"] = decl
	chain := gates.Default(cat, "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	op.Params = json.RawMessage(`{}`)

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusDenied, result.Status)
	require.Equal(t, string(mex.CodeSchemaViolation), result.Errors[0].Code)
}

// §5: adapter invocation is bounded by op.Budget.WallMillis; exceeding it
// cancels the in-flight call and is reported as an AdapterErrTimeout
// failure rather than hanging forever.
func TestRuntimeWallTimeoutCancelsAdapter(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(blockingAdapter{id: "echo-engine", version: "1.0.0"})

	op := basePlannedOp()
	tiny := int64(5)
	op.Budget.WallMillis = &tiny

	rt := mex.Runtime{Gates: chain, Adapters: adapters}
	result := rt.Execute(context.Background(), cc, op)
	require.Equal(t, mex.StatusFailed, result.Status)
	require.True(t, result.Cancelled)
	require.Equal(t, string(mex.AdapterErrTimeout), result.Errors[0].Code)
}

// §5: the runtime's per-engine invocation throttle bounds how often a new
// adapter call may start; a caller whose context expires while waiting on
// the throttle observes a cancelled failure, never a hang.
func TestRuntimeThrottleLimitsInvocationRate(t *testing.T) {
	reg := testRegistry(t)
	cc := corecontext.New(reg)
	chain := gates.Default(catalog(), "")

	adapters := mex.NewAdapterRegistry()
	adapters.Register(echoAdapter{id: "echo-engine", version: "1.0.0"})

	limiter := rate.NewLimiter(rate.Limit(1), 1)
	require.True(t, limiter.Allow()) // exhaust the single burst token

	rt := mex.Runtime{
		Gates:     chain,
		Adapters:  adapters,
		Throttles: map[string]*rate.Limiter{"echo-engine": limiter},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	result := rt.Execute(ctx, cc, basePlannedOp())
	require.Equal(t, mex.StatusFailed, result.Status)
	require.True(t, result.Cancelled)
}
