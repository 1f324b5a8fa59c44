// Package mex implements the Mechanical Engine Runtime: the planned-
// operation envelope, the six-gate enforcement pipeline, and adapter
// dispatch that turns a typed PlannedOperation into an attested
// EngineResult.
package mex

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the only value PlannedOperation.SchemaVersion may carry.
const SchemaVersion = "poe-1.0"

// Determinism is the lattice from fully reproducible (D0) to fully
// nondeterministic (D3).
type Determinism int

const (
	D0 Determinism = iota
	D1
	D2
	D3
)

// ArtifactHandle is the sole permitted shape for bulk data crossing trust
// boundaries: a UUID plus a path, never inline bytes.
type ArtifactHandle struct {
	ArtifactID uuid.UUID
	Path       string
}

// Budget bounds an operation's resource consumption. Zero fields mean
// "unspecified"; BudgetGate fills in registry-declared ceilings.
type Budget struct {
	CPUMillis    *int64
	WallMillis   *int64
	MemoryBytes  *int64
	OutputBytes  *int64
}

// EvidencePolicy governs whether an engine must attach evidence artifacts.
type EvidencePolicy struct {
	Required bool
	Notes    string
}

// OutputSpec declares the shape an engine's outputs must satisfy.
type OutputSpec struct {
	ExpectedTypes []string
	MaxBytes      *int64
}

// PlannedOperation (POE) is the typed envelope describing an intended
// engine invocation. It is immutable once submitted to the gate pipeline.
type PlannedOperation struct {
	SchemaVersion string

	OpID              uuid.UUID
	EngineID          string
	EngineVersionReq  string
	Operation         string
	Inputs            []ArtifactHandle
	Params            json.RawMessage

	CapabilitiesRequested []string
	CapabilityProfileID   string
	HumanConsentObtained  bool

	Budget         Budget
	Determinism    Determinism
	EvidencePolicy EvidencePolicy
	OutputSpec     OutputSpec
}

// Validate checks the structural invariants every PlannedOperation must
// satisfy regardless of gate pipeline outcome (§3). The determinism/
// evidence-policy and determinism-ceiling rules are DetGate's concern
// (§4.3 gate 6), not this method's: gate order is security-significant,
// and folding them in here would surface a determinism denial before an
// earlier gate (e.g. CapabilityGate) had a chance to deny first.
func (op *PlannedOperation) Validate() error {
	if op.SchemaVersion != SchemaVersion {
		return NewSchemaViolation("schema_version must be " + SchemaVersion)
	}
	if op.OpID == uuid.Nil {
		return NewSchemaViolation("op_id must be a non-nil UUIDv4")
	}
	return nil
}

// Status is the terminal disposition of an EngineResult.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusDenied    Status = "denied"
)

// EngineError is a structured failure attached to a Failed EngineResult.
type EngineError struct {
	Code    string
	Message string
}

// ProvenanceRecord binds inputs, capabilities, determinism, and outputs to
// the engine and version that produced them.
type ProvenanceRecord struct {
	OpID                 uuid.UUID
	EngineID             string
	EngineVersion        string
	Inputs               []ArtifactHandle
	Outputs              []ArtifactHandle
	CapabilitiesGranted  []string
	Determinism          Determinism
	ConfigHash           string
}

// EngineResult is the typed envelope an adapter produces for a
// PlannedOperation: outputs, evidence, provenance, and any errors. It is
// append-once: a caller never mutates a returned EngineResult.
type EngineResult struct {
	OpID      uuid.UUID
	Status    Status
	StartedAt time.Time
	EndedAt   time.Time
	Outputs   []ArtifactHandle
	Evidence  []ArtifactHandle
	Provenance ProvenanceRecord
	Errors    []EngineError
	LogsRef   string
	Cancelled bool
}
