// Package gates implements the six ordered gates of the MEX enforcement
// pipeline. Each gate inspects a PlannedOperation and returns a
// *mex.GateDenial on rejection. The fixed order — Schema, Capability, Integrity, Budget,
// Provenance, Det — is the contract (§4.3): reordering changes which
// denial a given input surfaces.
package gates

import (
	"encoding/json"

	"github.com/Nuntissura/Handshake-sub002/corecontext"
	"github.com/Nuntissura/Handshake-sub002/mex"
)

// Gate is a single check in the fixed MEX enforcement chain.
type Gate interface {
	Name() mex.GateName
	Check(cc *corecontext.Context, op *mex.PlannedOperation) error
}

// Chain runs every gate in order, stopping at the first denial.
type Chain struct {
	gates []Gate
}

// Default builds the chain in the exact order required by §4.3: Schema,
// Capability, Integrity, Budget, Provenance, Det. CapabilityGate resolves
// its registry from the corecontext.Context passed to Check, not from a
// constructor argument, so authorization always reflects the caller's
// live registry. storageRoot is the canonicalized root IntegrityGate
// resolves every input artifact path against; pass "" to skip the
// real-filesystem symlink check and enforce only the logical (no "..",
// no absolute) rules.
func Default(engines EngineCatalog, storageRoot string) Chain {
	return Chain{gates: []Gate{
		SchemaGate{Catalog: engines},
		CapabilityGate{},
		IntegrityGate{Catalog: engines, StorageRoot: storageRoot},
		BudgetGate{Catalog: engines},
		ProvenanceGate{},
		DetGate{Catalog: engines},
	}}
}

// Gates returns the ordered gate list, primarily for tests asserting order.
func (c Chain) Gates() []Gate { return c.gates }

// Run executes every gate in order against op, returning the first denial.
func (c Chain) Run(cc *corecontext.Context, op *mex.PlannedOperation) error {
	for _, g := range c.gates {
		if err := g.Check(cc, op); err != nil {
			return err
		}
	}
	return nil
}

// EngineDecl is the registry-declared contract for one engine: the version
// IntegrityGate checks against, the resource ceilings BudgetGate enforces
// on specified Budget fields and fills in for unspecified ones, the
// determinism ceiling DetGate enforces, the per-operation params_schema
// SchemaGate validates against, and the invocation throttle Throttles
// builds for the runtime.
type EngineDecl struct {
	EngineID           string
	Version            string
	MaxCPUMillis       int64
	MaxWallMillis      int64
	MaxMemoryBytes     int64
	MaxOutputBytes     int64
	DeterminismCeiling mex.Determinism
	// ParamsSchemas maps an operation name to its declared JSON Schema for
	// PlannedOperation.Params. An operation absent from this map, or mapped
	// to an empty document, carries no schema (§4.3 gate 1: "when present").
	ParamsSchemas map[string]json.RawMessage
	// MaxInvocationsPerSecond bounds how often the runtime may start a new
	// adapter invocation for this engine; <= 0 means unthrottled.
	MaxInvocationsPerSecond float64
	InvocationBurst         int
}

// EngineCatalog resolves an EngineID to its registry-declared contract.
type EngineCatalog interface {
	Lookup(engineID string) (EngineDecl, bool)
}

// StaticCatalog is an EngineCatalog backed by an in-memory map, suitable for
// configuration loaded once at boot.
type StaticCatalog map[string]EngineDecl

// Lookup implements EngineCatalog.
func (c StaticCatalog) Lookup(engineID string) (EngineDecl, bool) {
	d, ok := c[engineID]
	return d, ok
}
